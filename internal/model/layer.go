package model

import (
	"fmt"
	"math/rand/v2"

	"github.com/ChizhovVadim/lottoflow/internal/ml"
	"gonum.org/v1/gonum/mat"
)

// Layer works on 2D tensors: rows are time steps (or 1), cols are features.
// Forward caches what Backward needs, so a layer instance serves one sample at a time.
type Layer interface {
	Kind() string
	OutputShape() []int
	Forward(x *mat.Dense, training bool) *mat.Dense
	// Backward takes dLoss/dOutput, accumulates parameter gradients and returns dLoss/dInput.
	Backward(grad *mat.Dense) *mat.Dense
	Params() []*ml.Param
	ThreadCopy(rnd *rand.Rand) Layer
}

func buildLayer(cfg LayerConfig, index int, inShape []int, rnd *rand.Rand) (Layer, error) {
	switch cfg.Kind {
	case KindReshape:
		return newReshape(cfg, inShape)
	case KindFlatten:
		return newReshape(LayerConfig{Kind: KindFlatten, TargetShape: []int{product(inShape)}}, inShape)
	case KindLSTM:
		return newLSTM(cfg, index, inShape, rnd)
	case KindDropout:
		return newDropout(cfg, inShape, rnd)
	case KindAttention:
		return newAttention(cfg, index, inShape, rnd)
	case KindDense:
		return newDense(cfg, index, inShape, rnd)
	}
	return nil, ErrUnknownLayer
}

func initWeights(rnd *rand.Rand, p *ml.Param, initializer string) {
	var fanIn, fanOut = p.Value.Dims()
	switch initializer {
	case InitGlorotNormal:
		ml.InitGlorotNormal(rnd, p.Data(), fanIn, fanOut)
	default:
		ml.InitUniform(rnd, p.Data(), 2.0/float64(fanIn+fanOut))
	}
}

func activation(name string) (ml.IActivationFn, error) {
	var fn, ok = ml.ActivationByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown activation %q", name)
	}
	return fn, nil
}
