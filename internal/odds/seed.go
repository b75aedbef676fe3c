package odds

import (
	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// Seed devolve a lista estática de partidas usada quando nenhum provedor de odds está ativo.
// Cada chamada devolve uma cópia nova; quem recebe pode mutar à vontade.
func Seed() []sports.Match {
	return []sports.Match{
		{
			ID:        "1",
			Sport:     "football",
			League:    "Premier League",
			HomeTeam:  sports.Team{Name: "Manchester City", Logo: "🔵", Score: intPtr(2)},
			AwayTeam:  sports.Team{Name: "Liverpool", Logo: "🔴", Score: intPtr(1)},
			Odds:      sports.Odds{Home: 1.85, Draw: floatPtr(3.40), Away: 4.20},
			IsLive:    true,
			StartTime: "15:00",
			Minute:    intPtr(67),
		},
		{
			ID:        "2",
			Sport:     "football",
			League:    "La Liga",
			HomeTeam:  sports.Team{Name: "Real Madrid", Logo: "⚪", Score: intPtr(0)},
			AwayTeam:  sports.Team{Name: "Barcelona", Logo: "🟣", Score: intPtr(0)},
			Odds:      sports.Odds{Home: 2.10, Draw: floatPtr(3.25), Away: 3.50},
			IsLive:    true,
			StartTime: "20:00",
			Minute:    intPtr(23),
		},
		{
			ID:        "3",
			Sport:     "basketball",
			League:    "NBA",
			HomeTeam:  sports.Team{Name: "Lakers", Logo: "💛", Score: intPtr(89)},
			AwayTeam:  sports.Team{Name: "Celtics", Logo: "💚", Score: intPtr(94)},
			Odds:      sports.Odds{Home: 1.95, Away: 1.85},
			IsLive:    true,
			StartTime: "19:30",
			Minute:    intPtr(38),
		},
		{
			ID:         "4",
			Sport:      "tennis",
			League:     "ATP Finals",
			HomeTeam:   sports.Team{Name: "Djokovic", Logo: "🇷🇸"},
			AwayTeam:   sports.Team{Name: "Alcaraz", Logo: "🇪🇸"},
			Odds:       sports.Odds{Home: 1.65, Away: 2.25},
			StartTime: "18:00",
		},
		{
			ID:         "5",
			Sport:      "esports",
			League:     "League of Legends Worlds",
			HomeTeam:   sports.Team{Name: "T1", Logo: "🔴"},
			AwayTeam:   sports.Team{Name: "Gen.G", Logo: "🟡"},
			Odds:       sports.Odds{Home: 1.75, Away: 2.05},
			StartTime: "14:00",
		},
		{
			ID:         "6",
			Sport:      "mma",
			League:     "UFC 310",
			HomeTeam:   sports.Team{Name: "Adesanya", Logo: "🇳🇬"},
			AwayTeam:   sports.Team{Name: "Pereira", Logo: "🇧🇷"},
			Odds:       sports.Odds{Home: 2.40, Away: 1.58},
			StartTime: "22:00",
		},
		{
			ID:        "7",
			Sport:     "football",
			League:    "Champions League",
			HomeTeam:  sports.Team{Name: "Bayern Munich", Logo: "🔴", Score: intPtr(3)},
			AwayTeam:  sports.Team{Name: "PSG", Logo: "🔵", Score: intPtr(2)},
			Odds:      sports.Odds{Home: 1.55, Draw: floatPtr(4.00), Away: 5.50},
			IsLive:    true,
			StartTime: "21:00",
			Minute:    intPtr(82),
		},
		{
			ID:         "8",
			Sport:      "basketball",
			League:     "EuroLeague",
			HomeTeam:   sports.Team{Name: "Real Madrid", Logo: "⚪"},
			AwayTeam:   sports.Team{Name: "Olympiacos", Logo: "🔴"},
			Odds:       sports.Odds{Home: 1.45, Away: 2.70},
			StartTime: "20:45",
		},
	}
}
