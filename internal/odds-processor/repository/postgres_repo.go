package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/radieske/live-betting-platform/pkg/contracts/events"
)

// PostgresRepo implementa operações de persistência de odds em um banco Postgres
// DB: conexão com o banco de dados
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertMatch insere ou atualiza a partida na tabela matches
// Última escrita vence; o trigger da tabela dispara o NOTIFY matches_changed
func (r *PostgresRepo) UpsertMatch(ctx context.Context, e events.OddsUpdate) error {
	const q = `
		INSERT INTO matches
		  (id, sport, league, home_team, away_team, odds_home, odds_draw, odds_away, is_live, start_time, minute, version, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
		  sport      = EXCLUDED.sport,
		  league     = EXCLUDED.league,
		  home_team  = EXCLUDED.home_team,
		  away_team  = EXCLUDED.away_team,
		  odds_home  = EXCLUDED.odds_home,
		  odds_draw  = EXCLUDED.odds_draw,
		  odds_away  = EXCLUDED.odds_away,
		  is_live    = EXCLUDED.is_live,
		  start_time = EXCLUDED.start_time,
		  minute     = EXCLUDED.minute,
		  version    = EXCLUDED.version,
		  updated_at = EXCLUDED.updated_at
	`
	m := e.Match
	home, err := json.Marshal(m.HomeTeam)
	if err != nil {
		return err
	}
	away, err := json.Marshal(m.AwayTeam)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, q,
		m.ID, m.Sport, m.League, home, away,
		m.Odds.Home, m.Odds.Draw, m.Odds.Away,
		m.IsLive, m.StartTime, m.Minute,
		e.Version, e.UpdatedAt,
	)
	return err
}

// InsertHistory insere a cotação no histórico (odds_history)
func (r *PostgresRepo) InsertHistory(ctx context.Context, e events.OddsUpdate) error {
	const q = `
		INSERT INTO odds_history
		  (match_id, odds_home, odds_draw, odds_away, source, version, changed_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7)
	`
	m := e.Match
	_, err := r.DB.ExecContext(ctx, q,
		m.ID, m.Odds.Home, m.Odds.Draw, m.Odds.Away, e.Source, e.Version, e.UpdatedAt,
	)
	return err
}
