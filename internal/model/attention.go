package model

import (
	"fmt"
	"math/rand/v2"

	"github.com/ChizhovVadim/lottoflow/internal/ml"
	"gonum.org/v1/gonum/mat"
)

// attention scores every step with act(h_t*w + b) and returns the single row
// sum_t score_t*h_t. Scores are not normalized.
type attention struct {
	activationFn ml.IActivationFn
	weights      *ml.Param
	biases       *ml.Param
	steps        int
	units        int
	x            *mat.Dense
	scores       []float64
}

func newAttention(cfg LayerConfig, index int, inShape []int, rnd *rand.Rand) (*attention, error) {
	if len(inShape) != 2 {
		return nil, fmt.Errorf("%w: attention expects (steps, units), got %v", ErrShapeMismatch, inShape)
	}
	var fn, err = activation(cfg.Activation)
	if err != nil {
		return nil, err
	}
	var l = &attention{
		activationFn: fn,
		weights:      ml.NewParam(fmt.Sprintf("attention%v/kernel", index), inShape[1], 1, cfg.L2),
		biases:       ml.NewParam(fmt.Sprintf("attention%v/bias", index), 1, 1, 0),
		steps:        inShape[0],
		units:        inShape[1],
	}
	initWeights(rnd, l.weights, cfg.Initializer)
	return l, nil
}

func (l *attention) Kind() string        { return KindAttention }
func (l *attention) OutputShape() []int  { return []int{1, l.units} }
func (l *attention) Params() []*ml.Param { return []*ml.Param{l.weights, l.biases} }

func (l *attention) ThreadCopy(rnd *rand.Rand) Layer {
	return &attention{
		activationFn: l.activationFn,
		weights:      l.weights.ThreadCopy(),
		biases:       l.biases.ThreadCopy(),
		steps:        l.steps,
		units:        l.units,
	}
}

func (l *attention) Forward(x *mat.Dense, training bool) *mat.Dense {
	var scores = mat.NewVecDense(l.steps, nil)
	scores.MulVec(x, l.weights.Value.ColView(0))
	var b = l.biases.Value.At(0, 0)
	l.scores = scores.RawVector().Data
	for t := range l.scores {
		l.scores[t] = l.activationFn.Sigma(l.scores[t] + b)
	}
	l.x = x

	var context = mat.NewVecDense(l.units, nil)
	context.MulVec(x.T(), scores)
	return mat.NewDense(1, l.units, context.RawVector().Data)
}

func (l *attention) Backward(grad *mat.Dense) *mat.Dense {
	var g = mat.NewVecDense(l.units, grad.RawRowView(0))

	// dLoss/dScore_t = g . h_t
	var dScores = mat.NewVecDense(l.steps, nil)
	dScores.MulVec(l.x, g)
	var dz = dScores.RawVector().Data
	var bGrad float64
	for t := range dz {
		dz[t] *= l.activationFn.SigmaPrime(l.scores[t])
		bGrad += dz[t]
	}
	l.biases.Grad.Set(0, 0, l.biases.Grad.At(0, 0)+bGrad)

	var wGrad = mat.NewVecDense(l.units, nil)
	wGrad.MulVec(l.x.T(), dScores)
	var wg = l.weights.Grad.RawMatrix().Data
	for i := range wg {
		wg[i] += wGrad.AtVec(i)
	}

	var dx = mat.NewDense(l.steps, l.units, nil)
	dx.Outer(1, mat.NewVecDense(l.steps, l.scores), g)
	dx.RankOne(dx, 1, dScores, l.weights.Value.ColView(0))
	return dx
}
