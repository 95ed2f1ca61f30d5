package decoder

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/ChizhovVadim/lottoflow/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultTemperature = 0.99
	DefaultMaxAttempts = 1000
)

// Sampler draws diverse bets from prediction rows.
type Sampler struct {
	Temperature float64
	// MaxAttempts bounds the rejection loop for six distinct numbers.
	MaxAttempts int
	rnd         *rand.Rand
	fallbacks   int
}

func NewSampler(temperature float64, maxAttempts int, rnd *rand.Rand) *Sampler {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Sampler{
		Temperature: temperature,
		MaxAttempts: maxAttempts,
		rnd:         rnd,
	}
}

// Fallbacks counts bets that needed sampling without replacement.
func (s *Sampler) Fallbacks() int { return s.fallbacks }

// SampleBets draws one bet per row and removes repeated bets.
func (s *Sampler) SampleBets(ctx context.Context, predictions [][]float64) ([]domain.Bet, error) {
	var bets = make([]domain.Bet, 0, len(predictions))
	for _, probs := range predictions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var bet, err = s.SampleBet(probs)
		if err != nil {
			return nil, err
		}
		bets = append(bets, bet)
	}
	return Dedupe(bets), nil
}

func (s *Sampler) SampleBet(probs []float64) (domain.Bet, error) {
	var err = checkSize(probs)
	if err != nil {
		return domain.Bet{}, err
	}
	var weights [domain.NumbersPerDraw][]float64
	for i := range weights {
		weights[i] = Softmax(numberBlock(probs, i), s.Temperature)
	}
	var numbers = s.sampleNumbers(&weights)
	var superzahl = s.draw(Softmax(superzahlBlock(probs), s.Temperature))
	return domain.NewBet(numbers, superzahl), nil
}

func (s *Sampler) sampleNumbers(weights *[domain.NumbersPerDraw][]float64) [domain.NumbersPerDraw]int {
	var numbers [domain.NumbersPerDraw]int
	for attempt := 0; attempt < s.MaxAttempts; attempt++ {
		for i := range numbers {
			numbers[i] = s.draw(weights[i]) + 1
		}
		if distinct(numbers[:]) {
			return numbers
		}
	}
	s.fallbacks++
	return s.sampleWithoutReplacement(weights)
}

// sampleWithoutReplacement removes already taken numbers from the following blocks.
func (s *Sampler) sampleWithoutReplacement(weights *[domain.NumbersPerDraw][]float64) [domain.NumbersPerDraw]int {
	var numbers [domain.NumbersPerDraw]int
	var taken = make([]bool, domain.MaxNumber)
	var w = make([]float64, domain.MaxNumber)
	for i := range numbers {
		copy(w, weights[i])
		for j := range w {
			if taken[j] {
				w[j] = 0
			}
		}
		if floats.Sum(w) == 0 {
			for j := range w {
				if !taken[j] {
					w[j] = 1
				}
			}
		}
		var index = s.draw(w)
		taken[index] = true
		numbers[i] = index + 1
	}
	return numbers
}

func (s *Sampler) draw(weights []float64) int {
	return int(distuv.NewCategorical(weights, s.rnd).Rand())
}

// Softmax returns softmax(x / temperature).
func Softmax(x []float64, temperature float64) []float64 {
	var res = make([]float64, len(x))
	floats.ScaleTo(res, 1/temperature, x)
	var lse = floats.LogSumExp(res)
	for i := range res {
		res[i] = math.Exp(res[i] - lse)
	}
	return res
}

func distinct(numbers []int) bool {
	for i := range numbers {
		for j := i + 1; j < len(numbers); j++ {
			if numbers[i] == numbers[j] {
				return false
			}
		}
	}
	return true
}
