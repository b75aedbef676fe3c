package admin

import (
	"errors"
	"time"
)

const (
	ProviderTheOddsAPI = "the-odds-api"
	DefaultBaseURL     = "https://api.the-odds-api.com"

	// PlaceholderKey é o valor de exemplo do formulário; tratado como "sem chave"
	PlaceholderKey = "your-api-key-here"
)

var ErrNotFound = errors.New("api configuration not found")

// Config é uma credencial de provedor de odds. No máximo uma fica ativa.
type Config struct {
	ID           string
	Name         string
	ProviderType string
	APIKey       string
	BaseURL      string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Usable indica se a configuração tem uma chave real para um provedor suportado
func (c Config) Usable() bool {
	return c.APIKey != "" && c.APIKey != PlaceholderKey && c.ProviderType == ProviderTheOddsAPI
}

// NewConfig são os campos de criação; vazios recebem os defaults do provedor
type NewConfig struct {
	Name         string
	ProviderType string
	APIKey       string
	BaseURL      string
}

// Patch altera só os campos não-nil
type Patch struct {
	Name         *string
	ProviderType *string
	APIKey       *string
	BaseURL      *string
}

// MaskKey deixa visíveis só os 4 últimos caracteres
func MaskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
