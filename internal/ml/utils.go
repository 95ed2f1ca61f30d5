package ml

import (
	"math"
	"math/rand/v2"
)

// InitGlorotNormal fills data from a truncated normal with variance 2/(fanIn+fanOut).
func InitGlorotNormal(rnd *rand.Rand, data []float64, fanIn, fanOut int) {
	var stDev = math.Sqrt(2.0 / float64(fanIn+fanOut))
	for i := range data {
		var x = rnd.NormFloat64()
		for math.Abs(x) > 2 {
			x = rnd.NormFloat64()
		}
		data[i] = x * stDev
	}
}

func InitUniform(rnd *rand.Rand, data []float64, variance float64) {
	var uniformVariance = 1.0 / 12
	var scale = math.Sqrt(variance / uniformVariance)
	for i := range data {
		data[i] = (rnd.Float64() - 0.5) * scale
	}
}

func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
