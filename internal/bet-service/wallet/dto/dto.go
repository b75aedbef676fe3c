package dto

import "github.com/shopspring/decimal"

// DebitRequest espelha o corpo de POST /wallet/debit do wallet-service
type DebitRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	ExternalRef string          `json:"externalRef"`
}

// WalletResponse espelha a resposta de saldo do wallet-service
type WalletResponse struct {
	UserID  string          `json:"userId"`
	Balance decimal.Decimal `json:"balance"`
}
