package admin

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres guarda as configurações na tabela api_configurations
type Postgres struct {
	db    *sql.DB
	newID func() string
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, newID: uuid.NewString}
}

const selectConfig = `
	SELECT id, name, provider_type, api_key, COALESCE(base_url, ''), is_active, created_at, updated_at
	  FROM api_configurations`

type scanner interface {
	Scan(dest ...any) error
}

func scanConfig(s scanner) (Config, error) {
	var c Config
	err := s.Scan(&c.ID, &c.Name, &c.ProviderType, &c.APIKey, &c.BaseURL, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// validID evita mandar texto que não é uuid para o banco (viraria erro de sintaxe, não 404)
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// List devolve as configurações, mais recentes primeiro
func (p *Postgres) List(ctx context.Context) ([]Config, error) {
	rows, err := p.db.QueryContext(ctx, selectConfig+` ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Config{}
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) Get(ctx context.Context, id string) (Config, error) {
	if !validID(id) {
		return Config{}, ErrNotFound
	}
	c, err := scanConfig(p.db.QueryRowContext(ctx, selectConfig+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, ErrNotFound
	}
	return c, err
}

// Active devolve a configuração ativa; ErrNotFound quando nenhuma está
func (p *Postgres) Active(ctx context.Context) (Config, error) {
	c, err := scanConfig(p.db.QueryRowContext(ctx, selectConfig+` WHERE is_active`))
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, ErrNotFound
	}
	return c, err
}

// Create grava a configuração sempre inativa
func (p *Postgres) Create(ctx context.Context, in NewConfig) (Config, error) {
	if in.ProviderType == "" {
		in.ProviderType = ProviderTheOddsAPI
	}
	if in.BaseURL == "" {
		in.BaseURL = DefaultBaseURL
	}
	c, err := scanConfig(p.db.QueryRowContext(ctx, `
		INSERT INTO api_configurations (id, name, provider_type, api_key, base_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, provider_type, api_key, COALESCE(base_url, ''), is_active, created_at, updated_at`,
		p.newID(), in.Name, in.ProviderType, in.APIKey, in.BaseURL,
	))
	return c, err
}

func (p *Postgres) Update(ctx context.Context, id string, patch Patch) (Config, error) {
	if !validID(id) {
		return Config{}, ErrNotFound
	}
	c, err := scanConfig(p.db.QueryRowContext(ctx, `
		UPDATE api_configurations
		   SET name          = COALESCE($2, name),
		       provider_type = COALESCE($3, provider_type),
		       api_key       = COALESCE($4, api_key),
		       base_url      = COALESCE($5, base_url),
		       updated_at    = now()
		 WHERE id = $1
		RETURNING id, name, provider_type, api_key, COALESCE(base_url, ''), is_active, created_at, updated_at`,
		id, patch.Name, patch.ProviderType, patch.APIKey, patch.BaseURL,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, ErrNotFound
	}
	return c, err
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := p.db.ExecContext(ctx, `DELETE FROM api_configurations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive ativa ou desativa uma configuração.
//
// Ativar é um único UPDATE: a alvo recebe true e a que estava ativa recebe false.
// A constraint de exclusão diferida garante no máximo uma ativa no commit.
// Id desconhecido não altera nada. Desativar mexe só na alvo.
func (p *Postgres) SetActive(ctx context.Context, id string, active bool) (Config, error) {
	if !validID(id) {
		return Config{}, ErrNotFound
	}

	var (
		res sql.Result
		err error
	)
	if active {
		res, err = p.db.ExecContext(ctx, `
			UPDATE api_configurations
			   SET is_active = (id = $1), updated_at = now()
			 WHERE EXISTS (SELECT 1 FROM api_configurations WHERE id = $1)
			   AND (id = $1 OR is_active)`, id)
	} else {
		res, err = p.db.ExecContext(ctx, `
			UPDATE api_configurations SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	}
	if err != nil {
		return Config{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Config{}, ErrNotFound
	}
	return p.Get(ctx, id)
}
