package model

import (
	"fmt"
	"math/rand/v2"

	"github.com/ChizhovVadim/lottoflow/internal/ml"
	"gonum.org/v1/gonum/mat"
)

// reshape reinterprets the row-major data of its input. Flatten is a reshape to one row.
type reshape struct {
	kind     string
	inShape  []int
	outShape []int
}

func newReshape(cfg LayerConfig, inShape []int) (*reshape, error) {
	if product(cfg.TargetShape) != product(inShape) {
		return nil, fmt.Errorf("%w: cannot reshape %v to %v", ErrShapeMismatch, inShape, cfg.TargetShape)
	}
	return &reshape{
		kind:     cfg.Kind,
		inShape:  inShape,
		outShape: cfg.TargetShape,
	}, nil
}

func (l *reshape) Kind() string        { return l.kind }
func (l *reshape) OutputShape() []int  { return l.outShape }
func (l *reshape) Params() []*ml.Param { return nil }

func (l *reshape) ThreadCopy(rnd *rand.Rand) Layer { return l }

func (l *reshape) Forward(x *mat.Dense, training bool) *mat.Dense {
	return reshapeDense(x, l.outShape)
}

func (l *reshape) Backward(grad *mat.Dense) *mat.Dense {
	return reshapeDense(grad, l.inShape)
}

func reshapeDense(x *mat.Dense, shape []int) *mat.Dense {
	var rows, cols = matrixShape(shape)
	var raw = x.RawMatrix()
	if raw.Stride != raw.Cols {
		x = mat.DenseCopyOf(x)
		raw = x.RawMatrix()
	}
	return mat.NewDense(rows, cols, raw.Data[:rows*cols])
}
