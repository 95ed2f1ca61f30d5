package decoder

import (
	"errors"
	"fmt"

	"github.com/ChizhovVadim/lottoflow/internal/domain"
	"github.com/ChizhovVadim/lottoflow/internal/sequence"
	"gonum.org/v1/gonum/floats"
)

var ErrPredictionSize = errors.New("unexpected prediction size")

func checkSize(probs []float64) error {
	if len(probs) != sequence.TargetSize {
		return fmt.Errorf("%w: %v, expected %v", ErrPredictionSize, len(probs), sequence.TargetSize)
	}
	return nil
}

func numberBlock(probs []float64, i int) []float64 {
	return probs[i*domain.MaxNumber : (i+1)*domain.MaxNumber]
}

func superzahlBlock(probs []float64) []float64 {
	return probs[sequence.NumbersWidth:sequence.TargetSize]
}

// BestBet takes the most probable number of every block. Equal numbers in
// different blocks are kept as they are.
func BestBet(probs []float64) (domain.Bet, error) {
	var err = checkSize(probs)
	if err != nil {
		return domain.Bet{}, err
	}
	var numbers [domain.NumbersPerDraw]int
	for i := range numbers {
		numbers[i] = floats.MaxIdx(numberBlock(probs, i)) + 1
	}
	return domain.NewBet(numbers, floats.MaxIdx(superzahlBlock(probs))), nil
}
