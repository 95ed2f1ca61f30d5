package decoder

import "github.com/ChizhovVadim/lottoflow/internal/domain"

// Dedupe drops bets with repeated numbers and keeps the first bet of every
// number set. Superzahl does not take part in the comparison.
func Dedupe(bets []domain.Bet) []domain.Bet {
	var seen = make(map[[domain.NumbersPerDraw]int]struct{})
	var result []domain.Bet
	for _, bet := range bets {
		if bet.HasRepeats() {
			continue
		}
		if _, found := seen[bet.Zahlen]; found {
			continue
		}
		seen[bet.Zahlen] = struct{}{}
		result = append(result, bet)
	}
	return result
}
