package betslip

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

// DefaultStake é o valor com que uma seleção entra no slip quando o stake não é informado
var DefaultStake = decimal.NewFromInt(10)

// Item é uma seleção no bet slip. Odds é o snapshot da cotação no momento do clique.
type Item struct {
	MatchID       string           `json:"matchId"`
	Selection     sports.Selection `json:"selection"`
	Odds          decimal.Decimal  `json:"odds"`
	Stake         decimal.Decimal  `json:"stake"`
	MatchInfo     string           `json:"matchInfo"`
	SelectionName string           `json:"selectionName"`
}

// Slip guarda as seleções pendentes de um usuário.
// No máximo um item por partida: adicionar outra seleção da mesma partida substitui a anterior.
//
// PlacementID é a referência de débito da colocação; fica fixa até o slip ser consumido,
// então repetir a colocação nunca debita duas vezes. DebitPending marca um débito
// enviado cuja resposta se perdeu: o slip fica travado até uma nova colocação resolver.
type Slip struct {
	Items        []Item `json:"items"`
	PlacementID  string `json:"placementId,omitempty"`
	DebitPending bool   `json:"debitPending,omitempty"`
}

// Add insere o item, substituindo qualquer item da mesma partida
func (s *Slip) Add(it Item) {
	for i := range s.Items {
		if s.Items[i].MatchID == it.MatchID {
			s.Items[i] = it
			return
		}
	}
	s.Items = append(s.Items, it)
}

// Remove apaga o item da partida; no-op quando ele não existe
func (s *Slip) Remove(matchID string) {
	for i := range s.Items {
		if s.Items[i].MatchID == matchID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return
		}
	}
}

// UpdateStake troca o valor apostado no item da partida.
// Não valida sinal; quem coloca a aposta é que rejeita valores negativos.
// Devolve false quando a partida não está no slip.
func (s *Slip) UpdateStake(matchID string, stake decimal.Decimal) bool {
	for i := range s.Items {
		if s.Items[i].MatchID == matchID {
			s.Items[i].Stake = stake
			return true
		}
	}
	return false
}

// Clear esvazia o slip
func (s *Slip) Clear() {
	s.Items = nil
	s.PlacementID = ""
	s.DebitPending = false
}

// Contains indica se aquela seleção daquela partida está no slip (botão de odd "selecionado")
func (s Slip) Contains(matchID string, sel sports.Selection) bool {
	for _, it := range s.Items {
		if it.MatchID == matchID && it.Selection == sel {
			return true
		}
	}
	return false
}

func (s Slip) Len() int { return len(s.Items) }

func (s Slip) IsEmpty() bool { return len(s.Items) == 0 }

// TotalStake é a soma dos stakes
func (s Slip) TotalStake() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Stake)
	}
	return total
}

// CombinedOdds é o produto das odds (acumulada); 1 para slip vazio
func (s Slip) CombinedOdds() decimal.Decimal {
	combined := decimal.NewFromInt(1)
	for _, it := range s.Items {
		combined = combined.Mul(it.Odds)
	}
	return combined
}

// PotentialPayout = total apostado × odd combinada
func (s Slip) PotentialPayout() decimal.Decimal {
	return s.TotalStake().Mul(s.CombinedOdds())
}

// Summary é a visão agregada devolvida junto com o slip
type Summary struct {
	Items           []Item          `json:"items"`
	DebitPending    bool            `json:"debitPending"`
	TotalStake      decimal.Decimal `json:"totalStake"`
	CombinedOdds    decimal.Decimal `json:"combinedOdds"`
	PotentialPayout decimal.Decimal `json:"potentialPayout"`
}

func (s Slip) Summary() Summary {
	items := s.Items
	if items == nil {
		items = []Item{}
	}
	return Summary{
		Items:           items,
		DebitPending:    s.DebitPending,
		TotalStake:      s.TotalStake(),
		CombinedOdds:    s.CombinedOdds(),
		PotentialPayout: s.PotentialPayout(),
	}
}
