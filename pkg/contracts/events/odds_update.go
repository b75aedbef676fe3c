package events

import (
	"time"

	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

// Change descreve qual célula de odd mudou, usada pelo front para o destaque ("flash")
type Change struct {
	Side       sports.Selection `json:"side"`
	Old        float64          `json:"old"`
	New        float64          `json:"new"`
	FlashUntil time.Time        `json:"flash_until"`
}

// Evento publicado no tópico "odds_updates"
// Carrega a partida completa; Change só vem preenchido quando a origem foi a perturbação ao vivo.
type OddsUpdate struct {
	Match     sports.Match `json:"match"`
	Change    *Change      `json:"change,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
	Source    string       `json:"source"`  // "perturbation" | "poll"
	Version   int64        `json:"version"` // incrementado a cada atualização
}
