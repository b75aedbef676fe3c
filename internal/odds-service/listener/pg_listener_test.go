package listener

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/internal/odds"
	"github.com/radieske/live-betting-platform/internal/odds-processor/repository"
	"github.com/radieske/live-betting-platform/internal/odds-service/repo"
	"github.com/radieske/live-betting-platform/internal/shared/containers"
	"github.com/radieske/live-betting-platform/internal/shared/db"
	"github.com/radieske/live-betting-platform/pkg/contracts/events"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

var (
	testDB  *sql.DB
	testDSN string
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	container := containers.NewDBContainer()
	testDSN = container.ConnectionString()

	var err error
	testDB, err = db.ConnectPostgres(context.Background(), testDSN)
	if err != nil {
		fmt.Printf("error connecting to db: %v", err)
		container.Shutdown()
		os.Exit(-1)
	}

	code := m.Run()
	_ = testDB.Close()
	container.Shutdown()
	os.Exit(code)
}

func TestListenerReloadsChangedMatch(t *testing.T) {
	if testDB == nil {
		t.Skip("postgres container disabled in short mode")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan sports.Match, 4)
	ready := make(chan struct{})
	l := &Listener{
		DSN:     testDSN,
		Loader:  &repo.ReadRepo{DB: testDB},
		Log:     zap.NewNop(),
		OnMatch: func(m sports.Match) { got <- m },
		Ready:   ready,
	}
	go func() { _ = l.Run(ctx) }()

	select {
	case <-ready:
	case <-time.After(10 * time.Second):
		t.Fatal("listener never became ready")
	}

	m := odds.Seed()[2]
	m.Odds.Home = 2.02
	writer := repository.NewPostgresRepo(testDB)
	if err := writer.UpsertMatch(ctx, events.OddsUpdate{Match: m, Version: 1, UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	select {
	case reloaded := <-got:
		if reloaded.ID != m.ID || reloaded.Odds.Home != 2.02 || reloaded.HomeTeam.Name != "Lakers" {
			t.Errorf("unexpected reloaded match: %+v", reloaded)
		}
		if reloaded.Minute == nil || *reloaded.Minute != 38 || reloaded.Odds.Draw != nil {
			t.Errorf("optional fields not round-tripped: %+v", reloaded)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no notification received")
	}
}
