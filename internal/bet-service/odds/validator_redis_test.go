package odds

import (
	"context"
	"errors"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/radieske/live-betting-platform/internal/odds-processor/cache"
	"github.com/radieske/live-betting-platform/internal/shared/containers"
	"github.com/radieske/live-betting-platform/pkg/contracts/cachekeys"
	"github.com/radieske/live-betting-platform/pkg/contracts/events"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

// nil com -short
var testRedis *redis.Client

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	container := containers.NewRedisContainer()
	testRedis = redis.NewClient(&redis.Options{Addr: container.Addr()})

	code := m.Run()
	_ = testRedis.Close()
	container.Shutdown()
	os.Exit(code)
}

func TestQuoteReadsProcessorCache(t *testing.T) {
	if testRedis == nil {
		t.Skip("redis container not available with -short")
	}
	ctx := context.Background()
	if err := testRedis.FlushDB(ctx).Err(); err != nil {
		t.Fatal(err)
	}

	draw := 3.4
	update := events.OddsUpdate{Match: sports.Match{
		ID:       "10",
		HomeTeam: sports.Team{Name: "Flamengo"},
		AwayTeam: sports.Team{Name: "Palmeiras"},
		Odds:     sports.Odds{Home: 2.05, Draw: &draw, Away: 3.1},
	}}
	if err := cache.NewRedisCache(testRedis, time.Minute).SetCurrent(ctx, update); err != nil {
		t.Fatalf("set current: %v", err)
	}
	v := NewValidator(testRedis)

	tests := map[string]struct {
		matchID  string
		sel      sports.Selection
		setup    func(t *testing.T)
		wantOdds string
		wantName string
		wantErr  error
	}{
		"home": {matchID: "10", sel: sports.SelectionHome, wantOdds: "2.05", wantName: "Flamengo"},
		"draw": {matchID: "10", sel: sports.SelectionDraw, wantOdds: "3.4", wantName: "Draw"},
		"price key wins over match blob": {
			matchID: "10", sel: sports.SelectionAway, wantOdds: "3.25", wantName: "Palmeiras",
			setup: func(t *testing.T) {
				if err := testRedis.Set(ctx, cachekeys.Selection("10", sports.SelectionAway), "3.25", time.Minute).Err(); err != nil {
					t.Fatal(err)
				}
			},
		},
		"price key missing": {
			matchID: "10", sel: sports.SelectionHome, wantErr: ErrUnknownSelection,
			setup: func(t *testing.T) {
				if err := testRedis.Del(ctx, cachekeys.Selection("10", sports.SelectionHome)).Err(); err != nil {
					t.Fatal(err)
				}
			},
		},
		"unknown match": {matchID: "404", sel: sports.SelectionHome, wantErr: ErrUnknownMatch},
	}

	// casos que alteram o cache rodam por último
	for _, name := range []string{"home", "draw", "unknown match", "price key wins over match blob", "price key missing"} {
		tc := tests[name]
		t.Run(name, func(t *testing.T) {
			if tc.setup != nil {
				tc.setup(t)
			}
			q, err := v.Quote(ctx, tc.matchID, tc.sel)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !q.Odds.Equal(decimal.RequireFromString(tc.wantOdds)) {
				t.Errorf("expected odds %s, got %s", tc.wantOdds, q.Odds)
			}
			if q.SelectionName != tc.wantName {
				t.Errorf("expected selection name %s, got %s", tc.wantName, q.SelectionName)
			}
		})
	}
}
