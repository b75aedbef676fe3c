package sports

// Selection identifica o lado escolhido de um mercado 1x2
type Selection string

const (
	SelectionHome Selection = "home"
	SelectionDraw Selection = "draw"
	SelectionAway Selection = "away"
)

// Valid indica se a seleção é uma das três conhecidas
func (s Selection) Valid() bool {
	switch s {
	case SelectionHome, SelectionDraw, SelectionAway:
		return true
	}
	return false
}

// Team representa um dos lados da partida. Score só existe para partidas ao vivo.
type Team struct {
	Name  string `json:"name"`
	Logo  string `json:"logo"`
	Score *int   `json:"score,omitempty"`
}

// Odds guarda as cotações decimais do mercado 1x2.
// Draw é opcional (esportes sem empate).
type Odds struct {
	Home float64  `json:"home"`
	Draw *float64 `json:"draw,omitempty"`
	Away float64  `json:"away"`
}

// For retorna a cotação de uma seleção; ok=false quando ela não existe
func (o Odds) For(sel Selection) (float64, bool) {
	switch sel {
	case SelectionHome:
		return o.Home, true
	case SelectionAway:
		return o.Away, true
	case SelectionDraw:
		if o.Draw == nil {
			return 0, false
		}
		return *o.Draw, true
	}
	return 0, false
}

// Match é o formato de partida servido para o front-end e trafegado entre serviços
type Match struct {
	ID        string `json:"id"`
	Sport     string `json:"sport"`
	League    string `json:"league"`
	HomeTeam  Team   `json:"homeTeam"`
	AwayTeam  Team   `json:"awayTeam"`
	Odds      Odds   `json:"odds"`
	IsLive    bool   `json:"isLive"`
	StartTime string `json:"startTime"`
	Minute    *int   `json:"minute,omitempty"`
}

// Info monta o texto "Casa vs Fora" exibido no bet slip
func (m Match) Info() string {
	return m.HomeTeam.Name + " vs " + m.AwayTeam.Name
}

// SelectionName traduz a seleção para o nome exibido (time ou "Draw")
func (m Match) SelectionName(sel Selection) string {
	switch sel {
	case SelectionHome:
		return m.HomeTeam.Name
	case SelectionAway:
		return m.AwayTeam.Name
	default:
		return "Draw"
	}
}

// Clone devolve uma cópia profunda (ponteiros inclusos)
func (m Match) Clone() Match {
	c := m
	c.HomeTeam.Score = cloneInt(m.HomeTeam.Score)
	c.AwayTeam.Score = cloneInt(m.AwayTeam.Score)
	c.Minute = cloneInt(m.Minute)
	if m.Odds.Draw != nil {
		d := *m.Odds.Draw
		c.Odds.Draw = &d
	}
	return c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Category representa uma categoria de esporte exibida nos filtros
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}
