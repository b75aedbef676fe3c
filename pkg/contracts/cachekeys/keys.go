package cachekeys

import "github.com/radieske/live-betting-platform/pkg/contracts/sports"

// MarketH2H é o único mercado servido (1x2 / head-to-head)
const MarketH2H = "h2h"

// CurrentMatch guarda a partida completa em JSON
func CurrentMatch(matchID string) string { return "odds:current:" + matchID }

// Selection guarda a cotação de uma seleção como string ("1.85"), usada na validação do bet slip
func Selection(matchID string, sel sports.Selection) string {
	return "odds:" + matchID + ":" + MarketH2H + ":" + string(sel)
}
