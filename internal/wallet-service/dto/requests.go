package dto

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/live-betting-platform/internal/wallet-service/repo"
)

// AmountRequest é o corpo de depósito e débito
type AmountRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	ExternalRef string          `json:"externalRef,omitempty" validate:"omitempty,max=64"` // obrigatório no débito
}

type WalletResponse struct {
	UserID   string          `json:"userId"`
	WalletID string          `json:"walletId,omitempty"`
	Balance  decimal.Decimal `json:"balance"`
}

type LedgerResponse struct {
	UserID  string             `json:"userId"`
	Entries []repo.LedgerEntry `json:"entries"`
}
