package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/live-betting-platform/internal/betslip"
)

// Postgres implementa operações de persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Record insere uma aposta; satisfaz betslip.BetRecorder
func (p *Postgres) Record(ctx context.Context, b betslip.Bet) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id,user_id,match_id,selection,odds,stake,match_info,selection_name,status,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		b.ID, b.UserID, b.MatchID, string(b.Selection), b.Odds, b.Stake, b.MatchInfo, b.SelectionName, b.Status, b.CreatedAt,
	)
	return err
}

// ListByUser retorna o histórico de apostas do usuário, mais recentes primeiro
func (p *Postgres) ListByUser(ctx context.Context, userID string, limit int) ([]betslip.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id,user_id,match_id,selection,odds,stake,match_info,selection_name,status,created_at
		  FROM bets
		 WHERE user_id=$1
		 ORDER BY created_at DESC, id
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []betslip.Bet{}
	for rows.Next() {
		var b betslip.Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.MatchID, &b.Selection, &b.Odds, &b.Stake,
			&b.MatchInfo, &b.SelectionName, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetStatus retorna o status atual de uma aposta pelo betID
func (p *Postgres) GetStatus(ctx context.Context, betID string) (string, error) {
	var s string
	err := p.db.QueryRowContext(ctx, `SELECT status FROM bets WHERE id=$1`, betID).Scan(&s)
	return s, err
}
