package dto

import (
	"time"

	"github.com/radieske/live-betting-platform/internal/odds"
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

// Flash representa uma célula de odd ainda em destaque
type Flash struct {
	MatchID    string           `json:"matchId"`
	Side       sports.Selection `json:"side"`
	Old        float64          `json:"old"`
	New        float64          `json:"new"`
	FlashUntil time.Time        `json:"flashUntil"`
}

func FlashesFrom(changes []odds.Change) []Flash {
	out := make([]Flash, 0, len(changes))
	for _, c := range changes {
		out = append(out, Flash{MatchID: c.MatchID, Side: c.Side, Old: c.Old, New: c.New, FlashUntil: c.FlashUntil})
	}
	return out
}
