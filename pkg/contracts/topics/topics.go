package topics

const (
	// Odds
	OddsUpdates = "odds_updates"

	// Bets
	BetPlaced = "bet_placed"
)
