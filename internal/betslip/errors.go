package betslip

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated   = errors.New("betslip: no authenticated user")
	ErrEmptySlip         = errors.New("betslip: slip is empty")
	ErrInvalidStake      = errors.New("betslip: invalid stake")
	ErrInsufficientFunds = errors.New("betslip: insufficient funds")
	ErrWalletUnavailable = errors.New("betslip: wallet unavailable")
	// ErrAlreadyDebited vem da carteira quando a referência da colocação já foi debitada
	ErrAlreadyDebited = errors.New("betslip: placement already debited")
	// ErrDebitPending: o slip tem um débito sem confirmação e só aceita nova colocação
	ErrDebitPending = errors.New("betslip: debit pending, retry placement")
	// ErrPartialPersistence sinaliza que o saldo foi debitado mas nem todas as apostas foram gravadas
	ErrPartialPersistence = errors.New("betslip: some bets were not persisted")
)

// FailedItem é um item cuja aposta não foi gravada
type FailedItem struct {
	Item Item
	Err  error
}

// PartialPersistenceError lista os itens que falharam depois do débito.
// Não há compensação: o saldo continua debitado e o slip é limpo.
type PartialPersistenceError struct {
	Failed []FailedItem
}

func (e *PartialPersistenceError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		ids = append(ids, f.Item.MatchID)
	}
	return fmt.Sprintf("%s: %d failed (matches: %s)", ErrPartialPersistence, len(e.Failed), strings.Join(ids, ","))
}

func (e *PartialPersistenceError) Is(target error) bool {
	return target == ErrPartialPersistence
}
