package mockbetslip

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/radieske/live-betting-platform/internal/betslip"
	"github.com/radieske/live-betting-platform/pkg/contracts/events"
)

type Wallet struct {
	mock.Mock
}

func (w *Wallet) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	args := w.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (w *Wallet) Debit(ctx context.Context, userID string, amount decimal.Decimal, ref string) (decimal.Decimal, error) {
	args := w.Called(ctx, userID, amount, ref)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type BetRecorder struct {
	mock.Mock
}

func (r *BetRecorder) Record(ctx context.Context, b betslip.Bet) error {
	args := r.Called(ctx, b)
	return args.Error(0)
}

type Publisher struct {
	mock.Mock
}

func (p *Publisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	args := p.Called(ctx, e)
	return args.Error(0)
}
