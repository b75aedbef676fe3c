package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Postgres implementa operações de carteira em banco
type Postgres struct {
	db             *sql.DB
	initialBalance decimal.Decimal
}

// NewPostgres cria o repositório; carteiras novas nascem com initialBalance
func NewPostgres(db *sql.DB, initialBalance decimal.Decimal) *Postgres {
	return &Postgres{db: db, initialBalance: initialBalance}
}

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateRef      = errors.New("duplicate external ref")
)

// Wallet é a linha de carteira de um usuário
type Wallet struct {
	ID      string
	UserID  string
	Balance decimal.Decimal
}

// GetOrCreateWallet retorna a carteira do usuário, criando com o saldo inicial se não existir
// Usa transação para garantir atomicidade
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (Wallet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Wallet{}, err
	}
	defer tx.Rollback()

	// corrida entre dois primeiros acessos: ON CONFLICT deixa só uma linha
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallets(id, user_id, balance) VALUES($1,$2,$3) ON CONFLICT (user_id) DO NOTHING`,
		uuid.NewString(), userID, p.initialBalance); err != nil {
		return Wallet{}, err
	}

	w := Wallet{UserID: userID}
	if err = tx.QueryRowContext(ctx, `SELECT id, balance FROM wallets WHERE user_id=$1`, userID).Scan(&w.ID, &w.Balance); err != nil {
		return Wallet{}, err
	}

	if err = tx.Commit(); err != nil {
		return Wallet{}, err
	}
	return w, nil
}

// Deposit incrementa o saldo da carteira e registra a operação no ledger
// Garante lock pessimista na linha da carteira
func (p *Postgres) Deposit(ctx context.Context, userID string, amount decimal.Decimal, externalRef string) (decimal.Decimal, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	} else if err != nil {
		return decimal.Zero, err
	}

	var newBalance decimal.Decimal
	if err = tx.QueryRowContext(ctx,
		`UPDATE wallets SET balance = balance + $1, version = version + 1, updated_at = now() WHERE id=$2 RETURNING balance`,
		amount, id).Scan(&newBalance); err != nil {
		return decimal.Zero, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(wallet_id, operation_type, amount, external_ref, description) VALUES($1,'CREDIT',$2,$3,$4)`,
		id, amount, nullable(externalRef), "deposit"); err != nil {
		return decimal.Zero, err
	}

	if err = tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// Debit retira amount do saldo num único UPDATE condicional (saldo >= amount).
// Sem linha afetada: ErrNotFound se a carteira não existe, senão ErrInsufficientFunds.
// externalRef identifica a colocação; repetir a mesma referência devolve ErrDuplicateRef
// antes de olhar o saldo, então a retentativa de um débito já aplicado nunca vira 402.
func (p *Postgres) Debit(ctx context.Context, userID string, amount decimal.Decimal, externalRef string) (decimal.Decimal, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	if externalRef != "" {
		var dup bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(
			  SELECT 1 FROM wallet_ledger l JOIN wallets w ON w.id = l.wallet_id
			   WHERE w.user_id = $1 AND l.operation_type = 'DEBIT' AND l.external_ref = $2)`,
			userID, externalRef).Scan(&dup); err != nil {
			return decimal.Zero, err
		}
		if dup {
			return decimal.Zero, ErrDuplicateRef
		}
	}

	var (
		walletID   string
		newBalance decimal.Decimal
	)
	err = tx.QueryRowContext(ctx, `
		UPDATE wallets
		   SET balance = balance - $1, version = version + 1, updated_at = now()
		 WHERE user_id = $2 AND balance >= $1
		RETURNING id, balance`, amount, userID).Scan(&walletID, &newBalance)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM wallets WHERE user_id=$1)`, userID).Scan(&exists); err != nil {
			return decimal.Zero, err
		}
		if !exists {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, ErrInsufficientFunds
	} else if err != nil {
		return decimal.Zero, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(wallet_id, operation_type, amount, external_ref, description) VALUES($1,'DEBIT',$2,$3,$4)`,
		walletID, amount, nullable(externalRef), "bet placement"); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return decimal.Zero, ErrDuplicateRef
		}
		return decimal.Zero, err
	}

	if err = tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// LedgerEntry é uma linha do extrato
type LedgerEntry struct {
	Operation   string          `json:"operation"`
	Amount      decimal.Decimal `json:"amount"`
	ExternalRef string          `json:"externalRef,omitempty"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Ledger devolve as últimas operações da carteira, mais recentes primeiro
func (p *Postgres) Ledger(ctx context.Context, userID string, limit int) ([]LedgerEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT l.operation_type, l.amount, COALESCE(l.external_ref,''), COALESCE(l.description,''), l.created_at
		  FROM wallet_ledger l
		  JOIN wallets w ON w.id = l.wallet_id
		 WHERE w.user_id = $1
		 ORDER BY l.id DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LedgerEntry{}
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.Operation, &e.Amount, &e.ExternalRef, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
