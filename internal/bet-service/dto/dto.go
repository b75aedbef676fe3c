package dto

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/live-betting-platform/internal/betslip"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

// AddItemRequest: Odds é a cotação que o usuário viu ao clicar; Stake ausente usa betslip.DefaultStake
type AddItemRequest struct {
	MatchID   string           `json:"matchId" validate:"required,max=64"`
	Selection sports.Selection `json:"selection" validate:"required,oneof=home draw away"`
	Odds      decimal.Decimal  `json:"odds"`
	Stake     *decimal.Decimal `json:"stake"`
}

// SelectedResponse diz se a seleção já está no slip (destaque do botão de odd)
type SelectedResponse struct {
	MatchID   string           `json:"matchId"`
	Selection sports.Selection `json:"selection"`
	Selected  bool             `json:"selected"`
}

type UpdateStakeRequest struct {
	Stake decimal.Decimal `json:"stake"`
}

// OddsChangedResponse é devolvida com 409 quando a cotação mudou desde o clique
type OddsChangedResponse struct {
	Error       string          `json:"error"`
	CurrentOdds decimal.Decimal `json:"currentOdds"`
}

// PlaceResponse: Failed só aparece quando parte das apostas não foi gravada
type PlaceResponse struct {
	betslip.Receipt
	Failed []FailedItem `json:"failed,omitempty"`
}

type FailedItem struct {
	MatchID string `json:"matchId"`
	Error   string `json:"error"`
}

type BetsResponse struct {
	Bets []betslip.Bet `json:"bets"`
}
