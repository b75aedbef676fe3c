package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	walletdto "github.com/radieske/live-betting-platform/internal/bet-service/wallet/dto"
	"github.com/radieske/live-betting-platform/internal/betslip"
	"github.com/radieske/live-betting-platform/pkg/contracts/headers"
)

// Client fala com o wallet-service; satisfaz betslip.Wallet
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// Balance lê o saldo (o wallet-service cria a carteira no primeiro acesso)
func (c *Client) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/wallet", nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set(headers.UserID, userID)

	out, err := c.do(req)
	if err != nil {
		return decimal.Zero, err
	}
	return out.Balance, nil
}

// Debit retira amount do saldo; 402 vira betslip.ErrInsufficientFunds e 409 betslip.ErrAlreadyDebited
func (c *Client) Debit(ctx context.Context, userID string, amount decimal.Decimal, ref string) (decimal.Decimal, error) {
	body, err := json.Marshal(walletdto.DebitRequest{Amount: amount, ExternalRef: ref})
	if err != nil {
		return decimal.Zero, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wallet/debit", bytes.NewReader(body))
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headers.UserID, userID)

	out, err := c.do(req)
	if err != nil {
		return decimal.Zero, err
	}
	return out.Balance, nil
}

func (c *Client) do(req *http.Request) (walletdto.WalletResponse, error) {
	var out walletdto.WalletResponse

	res, err := c.HTTP.Do(req)
	if err != nil {
		return out, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusPaymentRequired {
		return out, betslip.ErrInsufficientFunds
	}
	// referência de colocação repetida: o débito já foi aplicado antes
	if res.StatusCode == http.StatusConflict {
		return out, betslip.ErrAlreadyDebited
	}
	if res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return out, fmt.Errorf("wallet %s %s: http %d: %s", req.Method, req.URL.Path, res.StatusCode, bytes.TrimSpace(msg))
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode wallet response: %w", err)
	}
	return out, nil
}
