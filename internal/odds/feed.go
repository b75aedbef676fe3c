package odds

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/radieske/live-betting-platform/pkg/contracts/sports"
)

// DefaultFlashDuration é por quanto tempo uma célula alterada fica destacada
const DefaultFlashDuration = 500 * time.Millisecond

// Change descreve uma cotação que mudou e até quando o destaque dela vale
type Change struct {
	MatchID    string
	Side       sports.Selection
	Old        float64
	New        float64
	FlashUntil time.Time
}

// Feed guarda a lista atual de partidas.
// O timer de perturbação e a assinatura de mudanças escrevem em goroutines diferentes;
// vale a última escrita, na ordem de chegada.
type Feed struct {
	mu       sync.RWMutex
	clock    clock.Clock
	flashFor time.Duration

	matches []sports.Match
	index   map[string]int
	flashes map[flashKey]Change
}

type flashKey struct {
	matchID string
	side    sports.Selection
}

// NewFeed cria um feed vazio. flashFor <= 0 usa DefaultFlashDuration.
func NewFeed(clk clock.Clock, flashFor time.Duration) *Feed {
	if clk == nil {
		clk = clock.New()
	}
	if flashFor <= 0 {
		flashFor = DefaultFlashDuration
	}
	return &Feed{
		clock:    clk,
		flashFor: flashFor,
		index:    make(map[string]int),
		flashes:  make(map[flashKey]Change),
	}
}

// Replace troca a lista inteira (resultado de poll ou carga inicial)
func (f *Feed) Replace(matches []sports.Match) {
	next := make([]sports.Match, 0, len(matches))
	index := make(map[string]int, len(matches))
	for _, m := range matches {
		m = normalizeMatch(m.Clone())
		if i, dup := index[m.ID]; dup {
			next[i] = m
			continue
		}
		index[m.ID] = len(next)
		next = append(next, m)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = next
	f.index = index
	for k := range f.flashes {
		if _, ok := index[k.matchID]; !ok {
			delete(f.flashes, k)
		}
	}
}

// Apply insere ou atualiza uma única partida (callback da assinatura de mudanças).
// Devolve as cotações que mudaram em relação ao estado anterior; cada uma ganha destaque.
func (f *Feed) Apply(m sports.Match) []Change {
	m = normalizeMatch(m.Clone())

	f.mu.Lock()
	defer f.mu.Unlock()

	i, ok := f.index[m.ID]
	if !ok {
		f.index[m.ID] = len(f.matches)
		f.matches = append(f.matches, m)
		return nil
	}

	prev := f.matches[i]
	f.matches[i] = m

	var changes []Change
	until := f.clock.Now().Add(f.flashFor)
	for _, side := range []sports.Selection{sports.SelectionHome, sports.SelectionDraw, sports.SelectionAway} {
		oldV, hadOld := prev.Odds.For(side)
		newV, hasNew := m.Odds.For(side)
		if !hadOld || !hasNew || oldV == newV {
			continue
		}
		c := Change{MatchID: m.ID, Side: side, Old: oldV, New: newV, FlashUntil: until}
		f.flashes[flashKey{m.ID, side}] = c
		changes = append(changes, c)
	}
	return changes
}

// Snapshot devolve uma cópia da lista atual, na ordem de inserção
func (f *Feed) Snapshot() []sports.Match {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]sports.Match, len(f.matches))
	for i, m := range f.matches {
		out[i] = m.Clone()
	}
	return out
}

// Get busca uma partida pelo id
func (f *Feed) Get(id string) (sports.Match, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	i, ok := f.index[id]
	if !ok {
		return sports.Match{}, false
	}
	return f.matches[i].Clone(), true
}

// Filter aplica o filtro de categoria do menu ("" ou "all" = todas).
// live nil não filtra; true traz só as ao vivo e false só as próximas (ainda não ao vivo).
func (f *Feed) Filter(sport string, live *bool) []sports.Match {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]sports.Match, 0, len(f.matches))
	for _, m := range f.matches {
		if sport != "" && sport != "all" && m.Sport != sport {
			continue
		}
		if live != nil && m.IsLive != *live {
			continue
		}
		out = append(out, m.Clone())
	}
	return out
}

// Len devolve quantas partidas o feed tem
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.matches)
}

// PerturbRandom sorteia uma partida ao vivo e um lado (casa/fora), ambos uniformes,
// e recalcula a cotação desse lado com Perturb. ok=false quando não há partida ao vivo.
func (f *Feed) PerturbRandom(rng *rand.Rand) (Change, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	live := make([]int, 0, len(f.matches))
	for i, m := range f.matches {
		if m.IsLive {
			live = append(live, i)
		}
	}
	if len(live) == 0 {
		return Change{}, false
	}

	i := live[rng.Intn(len(live))]
	m := &f.matches[i]

	side := sports.SelectionHome
	if rng.Intn(2) == 1 {
		side = sports.SelectionAway
	}

	c := Change{MatchID: m.ID, Side: side, FlashUntil: f.clock.Now().Add(f.flashFor)}
	if side == sports.SelectionHome {
		c.Old = m.Odds.Home
		m.Odds.Home = Perturb(m.Odds.Home, rng)
		c.New = m.Odds.Home
	} else {
		c.Old = m.Odds.Away
		m.Odds.Away = Perturb(m.Odds.Away, rng)
		c.New = m.Odds.Away
	}

	f.flashes[flashKey{m.ID, side}] = c
	return c, true
}

// Flashing devolve as mudanças cujo destaque ainda não expirou, ordenadas por partida e lado.
// As expiradas são descartadas.
func (f *Feed) Flashing() []Change {
	now := f.clock.Now()

	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Change, 0, len(f.flashes))
	for k, c := range f.flashes {
		if !now.Before(c.FlashUntil) {
			delete(f.flashes, k)
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchID != out[j].MatchID {
			return out[i].MatchID < out[j].MatchID
		}
		return out[i].Side < out[j].Side
	})
	return out
}

func normalizeMatch(m sports.Match) sports.Match {
	m.Odds.Home, m.Odds.Away, m.Odds.Draw = normalizeAll(m.Odds.Home, m.Odds.Away, m.Odds.Draw)
	return m
}
