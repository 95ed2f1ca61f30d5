package model

import (
	"fmt"
	"math/rand/v2"

	"github.com/ChizhovVadim/lottoflow/internal/ml"
	"gonum.org/v1/gonum/mat"
)

// dropout zeroes inputs with probability rate during training and scales the rest by 1/(1-rate).
type dropout struct {
	rate     float64
	shape    []int
	rnd      *rand.Rand
	mask     []float64
	training bool
}

func newDropout(cfg LayerConfig, inShape []int, rnd *rand.Rand) (*dropout, error) {
	if cfg.Rate < 0 || cfg.Rate >= 1 {
		return nil, fmt.Errorf("dropout rate %v not in [0, 1)", cfg.Rate)
	}
	return &dropout{
		rate:  cfg.Rate,
		shape: inShape,
		rnd:   rnd,
	}, nil
}

func (l *dropout) Kind() string        { return KindDropout }
func (l *dropout) OutputShape() []int  { return l.shape }
func (l *dropout) Params() []*ml.Param { return nil }

func (l *dropout) ThreadCopy(rnd *rand.Rand) Layer {
	return &dropout{
		rate:  l.rate,
		shape: l.shape,
		rnd:   rnd,
	}
}

func (l *dropout) Forward(x *mat.Dense, training bool) *mat.Dense {
	l.training = training
	if !training || l.rate == 0 {
		return x
	}
	var rows, cols = x.Dims()
	if len(l.mask) != rows*cols {
		l.mask = make([]float64, rows*cols)
	}
	var scale = 1 / (1 - l.rate)
	for i := range l.mask {
		if l.rnd.Float64() < l.rate {
			l.mask[i] = 0
		} else {
			l.mask[i] = scale
		}
	}
	var out = mat.NewDense(rows, cols, nil)
	out.MulElem(x, mat.NewDense(rows, cols, l.mask))
	return out
}

func (l *dropout) Backward(grad *mat.Dense) *mat.Dense {
	if !l.training || l.rate == 0 {
		return grad
	}
	var rows, cols = grad.Dims()
	var res = mat.NewDense(rows, cols, nil)
	res.MulElem(grad, mat.NewDense(rows, cols, l.mask))
	return res
}
