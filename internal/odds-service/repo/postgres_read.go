package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

var ErrNotFound = errors.New("match not found")

type ReadRepo struct {
	DB *sql.DB
}

const selectMatch = `
	SELECT id, sport, league, home_team, away_team, odds_home, odds_draw, odds_away, is_live, start_time, minute
	FROM matches
`

// ListMatches carrega todas as partidas; ao vivo primeiro, depois por id
func (r *ReadRepo) ListMatches(ctx context.Context) ([]sports.Match, error) {
	rows, err := r.DB.QueryContext(ctx, selectMatch+` ORDER BY is_live DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []sports.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ReadRepo) GetMatch(ctx context.Context, id string) (sports.Match, error) {
	m, err := scanMatch(r.DB.QueryRowContext(ctx, selectMatch+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return sports.Match{}, ErrNotFound
	}
	return m, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(s scanner) (sports.Match, error) {
	var (
		m          sports.Match
		home, away []byte
		draw       sql.NullFloat64
		minute     sql.NullInt64
	)
	if err := s.Scan(&m.ID, &m.Sport, &m.League, &home, &away, &m.Odds.Home, &draw, &m.Odds.Away, &m.IsLive, &m.StartTime, &minute); err != nil {
		return sports.Match{}, err
	}
	if err := json.Unmarshal(home, &m.HomeTeam); err != nil {
		return sports.Match{}, err
	}
	if err := json.Unmarshal(away, &m.AwayTeam); err != nil {
		return sports.Match{}, err
	}
	if draw.Valid {
		d := draw.Float64
		m.Odds.Draw = &d
	}
	if minute.Valid {
		v := int(minute.Int64)
		m.Minute = &v
	}
	return m, nil
}
