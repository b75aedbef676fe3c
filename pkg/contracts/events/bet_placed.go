package events

import "github.com/shopspring/decimal"

// Evento publicado no tópico "bet_placed" para cada aposta persistida
type BetPlaced struct {
	BetID     string          `json:"bet_id"`
	UserID    string          `json:"user_id"`
	MatchID   string          `json:"match_id"`
	Selection string          `json:"selection"`
	Stake     decimal.Decimal `json:"stake"`
	Odds      decimal.Decimal `json:"odds"`
	SlipSize  int             `json:"slip_size"` // quantidade de itens do acumulador
	TsUnixMs  int64           `json:"ts_unix_ms"`
}
