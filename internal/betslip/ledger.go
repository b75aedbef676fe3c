package betslip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/pkg/contracts/events"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

const StatusPending = "PENDING"

// Bet é o registro gravado para cada item de um slip colocado
type Bet struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId"`
	MatchID       string           `json:"matchId"`
	Selection     sports.Selection `json:"selection"`
	Odds          decimal.Decimal  `json:"odds"`
	Stake         decimal.Decimal  `json:"stake"`
	MatchInfo     string           `json:"matchInfo"`
	SelectionName string           `json:"selectionName"`
	Status        string           `json:"status"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// Wallet é o dono do saldo. Debit deve ser atômico do lado do servidor e
// devolver ErrInsufficientFunds quando o saldo não cobre o valor.
type Wallet interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	Debit(ctx context.Context, userID string, amount decimal.Decimal, ref string) (decimal.Decimal, error)
}

// BetRecorder grava um registro de aposta
type BetRecorder interface {
	Record(ctx context.Context, b Bet) error
}

// Publisher publica o evento bet_placed
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
}

// Receipt é o resultado de uma colocação; BetIDs contém só as apostas gravadas
type Receipt struct {
	PlacementID     string          `json:"placementId"`
	BetIDs          []string        `json:"betIds"`
	TotalStake      decimal.Decimal `json:"totalStake"`
	CombinedOdds    decimal.Decimal `json:"combinedOdds"`
	PotentialPayout decimal.Decimal `json:"potentialPayout"`
	NewBalance      decimal.Decimal `json:"newBalance"`
}

// Checkpoint persiste o slip antes do débito (normalmente Store.Save)
type Checkpoint func(ctx context.Context, userID string, s Slip) error

type Ledger struct {
	wallet Wallet
	bets   BetRecorder
	pub    Publisher
	log    *zap.Logger

	// Checkpoint opcional; sem ele quem chama precisa salvar o slip depois de um erro
	Checkpoint Checkpoint

	now   func() time.Time
	newID func() string
}

// NewLedger monta o ledger; pub pode ser nil (sem eventos)
func NewLedger(w Wallet, bets BetRecorder, pub Publisher, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		wallet: w,
		bets:   bets,
		pub:    pub,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Place debita o total do slip e grava uma aposta por item.
//
// Falhas antes do débito (usuário, slip, stake, saldo, carteira) deixam slip e saldo intactos.
// Depois do débito o slip é sempre limpo; itens que não foram gravados voltam
// em *PartialPersistenceError junto com o Receipt.
// Um débito sem resposta deixa o slip com DebitPending; chamar Place de novo com o
// mesmo slip reaproveita a referência e nunca debita duas vezes.
func (l *Ledger) Place(ctx context.Context, userID string, slip *Slip) (Receipt, error) {
	if userID == "" {
		return Receipt{}, ErrUnauthenticated
	}
	if slip == nil || slip.IsEmpty() {
		return Receipt{}, ErrEmptySlip
	}
	for _, it := range slip.Items {
		if it.Stake.IsNegative() {
			return Receipt{}, fmt.Errorf("%w: negative stake on match %s", ErrInvalidStake, it.MatchID)
		}
	}

	total := slip.TotalStake()
	if !total.IsPositive() {
		return Receipt{}, fmt.Errorf("%w: total stake must be positive", ErrInvalidStake)
	}

	// numa retentativa o débito pode já ter sido aplicado; a carteira decide pela referência
	if !slip.DebitPending {
		balance, err := l.wallet.Balance(ctx, userID)
		if err != nil {
			return Receipt{}, fmt.Errorf("%w: read balance: %v", ErrWalletUnavailable, err)
		}
		if total.GreaterThan(balance) {
			return Receipt{}, ErrInsufficientFunds
		}
	}

	if slip.PlacementID == "" {
		slip.PlacementID = l.newID()
	}
	placementID := slip.PlacementID
	wasPending := slip.DebitPending
	slip.DebitPending = true
	if err := l.checkpoint(ctx, userID, *slip); err != nil {
		slip.DebitPending = wasPending
		return Receipt{}, fmt.Errorf("checkpoint slip: %w", err)
	}

	newBalance, err := l.wallet.Debit(ctx, userID, total, placementID)
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyDebited):
		l.log.Info("placement already debited, resuming",
			zap.String("user_id", userID),
			zap.String("placement_id", placementID),
		)
		if newBalance, err = l.wallet.Balance(ctx, userID); err != nil {
			l.log.Warn("balance after resumed placement unavailable", zap.String("user_id", userID), zap.Error(err))
			newBalance = decimal.Zero
		}
	case errors.Is(err, ErrInsufficientFunds):
		// recusa definitiva: nada foi debitado com essa referência
		slip.DebitPending = false
		if cerr := l.checkpoint(ctx, userID, *slip); cerr != nil {
			l.log.Warn("failed to release pending slip", zap.String("user_id", userID), zap.Error(cerr))
		}
		return Receipt{}, ErrInsufficientFunds
	default:
		// resultado desconhecido: o slip continua pendente com a mesma referência
		return Receipt{}, fmt.Errorf("%w: debit: %v", ErrWalletUnavailable, err)
	}

	receipt := Receipt{
		PlacementID:     placementID,
		BetIDs:          make([]string, 0, slip.Len()),
		TotalStake:      total,
		CombinedOdds:    slip.CombinedOdds(),
		PotentialPayout: slip.PotentialPayout(),
		NewBalance:      newBalance,
	}

	var (
		failed    []FailedItem
		persisted []Bet
	)
	createdAt := l.now().UTC()
	for _, it := range slip.Items {
		b := Bet{
			ID:            l.newID(),
			UserID:        userID,
			MatchID:       it.MatchID,
			Selection:     it.Selection,
			Odds:          it.Odds,
			Stake:         it.Stake,
			MatchInfo:     it.MatchInfo,
			SelectionName: it.SelectionName,
			Status:        StatusPending,
			CreatedAt:     createdAt,
		}
		if err := l.bets.Record(ctx, b); err != nil {
			l.log.Error("failed to persist bet",
				zap.String("user_id", userID),
				zap.String("match_id", it.MatchID),
				zap.String("placement_id", placementID),
				zap.Error(err),
			)
			failed = append(failed, FailedItem{Item: it, Err: err})
			continue
		}
		receipt.BetIDs = append(receipt.BetIDs, b.ID)
		persisted = append(persisted, b)
	}

	// o débito já aconteceu: o slip é consumido mesmo com falhas parciais
	size := slip.Len()
	slip.Clear()

	l.publish(ctx, persisted, size)

	l.log.Info("bet slip placed",
		zap.String("user_id", userID),
		zap.String("placement_id", placementID),
		zap.String("total_stake", total.String()),
		zap.Int("persisted", len(persisted)),
		zap.Int("failed", len(failed)),
	)

	if len(failed) > 0 {
		return receipt, &PartialPersistenceError{Failed: failed}
	}
	return receipt, nil
}

func (l *Ledger) checkpoint(ctx context.Context, userID string, s Slip) error {
	if l.Checkpoint == nil {
		return nil
	}
	return l.Checkpoint(ctx, userID, s)
}

// publish é best-effort: erro de broker só gera log
func (l *Ledger) publish(ctx context.Context, bets []Bet, slipSize int) {
	if l.pub == nil {
		return
	}
	for _, b := range bets {
		err := l.pub.PublishBetPlaced(ctx, events.BetPlaced{
			BetID:     b.ID,
			UserID:    b.UserID,
			MatchID:   b.MatchID,
			Selection: string(b.Selection),
			Stake:     b.Stake,
			Odds:      b.Odds,
			SlipSize:  slipSize,
		})
		if err != nil {
			l.log.Warn("failed to publish bet_placed", zap.String("bet_id", b.ID), zap.Error(err))
		}
	}
}
