package ml

import "math"

// Clipping keeps log finite for saturated sigmoid outputs.
const epsilon = 1e-7

type IModelCost interface {
	Cost(predicted, target []float64) float64
	// CostPrime writes dCost/dPredicted into grad.
	CostPrime(predicted, target, grad []float64)
}

// BinaryCrossEntropy treats every output as an independent binary decision
// and averages the elementwise loss over the outputs.
type BinaryCrossEntropy struct{}

func (*BinaryCrossEntropy) Cost(predicted, target []float64) float64 {
	var sum float64
	for i := range predicted {
		var p = clip(predicted[i])
		var t = target[i]
		sum -= t*math.Log(p) + (1-t)*math.Log(1-p)
	}
	return sum / float64(len(predicted))
}

func (*BinaryCrossEntropy) CostPrime(predicted, target, grad []float64) {
	var n = float64(len(predicted))
	for i := range predicted {
		var p = clip(predicted[i])
		grad[i] = (p - target[i]) / (p * (1 - p)) / n
	}
}

// BinaryAccuracy is the share of outputs that round to their target.
func BinaryAccuracy(predicted, target []float64) float64 {
	var hits int
	for i := range predicted {
		var p float64
		if predicted[i] > 0.5 {
			p = 1
		}
		if p == target[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(predicted))
}

func clip(p float64) float64 {
	if p < epsilon {
		return epsilon
	}
	if p > 1-epsilon {
		return 1 - epsilon
	}
	return p
}
