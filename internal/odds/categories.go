package odds

import "github.com/radieske/live-betting-platform/pkg/contracts/sports"

// Categories lista as modalidades navegáveis, na ordem do menu
func Categories() []sports.Category {
	return []sports.Category{
		{ID: "football", Name: "Football", Icon: "⚽"},
		{ID: "basketball", Name: "Basketball", Icon: "🏀"},
		{ID: "tennis", Name: "Tennis", Icon: "🎾"},
		{ID: "esports", Name: "Esports", Icon: "🎮"},
		{ID: "mma", Name: "MMA", Icon: "🥊"},
		{ID: "baseball", Name: "Baseball", Icon: "⚾"},
	}
}
