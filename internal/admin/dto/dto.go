package dto

import (
	"time"

	"github.com/radieske/live-betting-platform/internal/admin"
)

type CreateConfigRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	ProviderType string `json:"providerType" validate:"omitempty,oneof=the-odds-api"`
	APIKey       string `json:"apiKey" validate:"required,max=200"`
	BaseURL      string `json:"baseUrl" validate:"omitempty,url"`
}

// UpdateConfigRequest: campos ausentes ficam como estão
type UpdateConfigRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	ProviderType *string `json:"providerType" validate:"omitempty,oneof=the-odds-api"`
	APIKey       *string `json:"apiKey" validate:"omitempty,min=1,max=200"`
	BaseURL      *string `json:"baseUrl" validate:"omitempty,url"`
}

// ConfigResponse nunca carrega a chave inteira
type ConfigResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ProviderType string    `json:"providerType"`
	APIKey       string    `json:"apiKey"`
	BaseURL      string    `json:"baseUrl"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func FromConfig(c admin.Config) ConfigResponse {
	return ConfigResponse{
		ID:           c.ID,
		Name:         c.Name,
		ProviderType: c.ProviderType,
		APIKey:       admin.MaskKey(c.APIKey),
		BaseURL:      c.BaseURL,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
