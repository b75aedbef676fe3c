package odds

import (
	"math/rand"

	"github.com/shopspring/decimal"
)

const (
	// MinOdds é o piso de qualquer cotação exibida ou apostada
	MinOdds = 1.01
	// MaxDrift é a oscilação máxima (para cima ou para baixo) de um passo de perturbação
	MaxDrift = 0.075
)

var minOddsDec = decimal.NewFromFloat(MinOdds)

// NormalizeOdds arredonda para 2 casas (aritmética decimal) e aplica o piso de 1.01
func NormalizeOdds(v float64) float64 {
	d := decimal.NewFromFloat(v).Round(2)
	if d.LessThan(minOddsDec) {
		d = minOddsDec
	}
	f, _ := d.Float64()
	return f
}

// Perturb desloca a cotação por um valor uniforme em [-0.075, +0.075) e normaliza o resultado
func Perturb(current float64, rng *rand.Rand) float64 {
	drift := (rng.Float64() - 0.5) * (2 * MaxDrift)
	return NormalizeOdds(current + drift)
}

// normalizeAll aplica NormalizeOdds em todas as cotações presentes
func normalizeAll(home, away float64, draw *float64) (float64, float64, *float64) {
	home = NormalizeOdds(home)
	away = NormalizeOdds(away)
	if draw != nil {
		d := NormalizeOdds(*draw)
		draw = &d
	}
	return home, away, draw
}
