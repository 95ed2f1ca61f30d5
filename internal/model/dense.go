package model

import (
	"fmt"
	"math/rand/v2"

	"github.com/ChizhovVadim/lottoflow/internal/ml"
	"gonum.org/v1/gonum/mat"
)

// dense applies y = act(x*W + b) to every input row.
type dense struct {
	units        int
	activationFn ml.IActivationFn
	weights      *ml.Param
	biases       *ml.Param
	shape        []int
	x            *mat.Dense
	y            *mat.Dense
}

func newDense(cfg LayerConfig, index int, inShape []int, rnd *rand.Rand) (*dense, error) {
	if cfg.Units <= 0 {
		return nil, fmt.Errorf("dense units %v", cfg.Units)
	}
	var fn, err = activation(cfg.Activation)
	if err != nil {
		return nil, err
	}
	var rows, inputSize = matrixShape(inShape)
	var l = &dense{
		units:        cfg.Units,
		activationFn: fn,
		weights:      ml.NewParam(fmt.Sprintf("dense%v/kernel", index), inputSize, cfg.Units, cfg.L2),
		biases:       ml.NewParam(fmt.Sprintf("dense%v/bias", index), 1, cfg.Units, 0),
		shape:        outputShape(inShape, rows, cfg.Units),
	}
	initWeights(rnd, l.weights, cfg.Initializer)
	return l, nil
}

func outputShape(inShape []int, rows, units int) []int {
	if len(inShape) == 1 {
		return []int{units}
	}
	return []int{rows, units}
}

func (l *dense) Kind() string        { return KindDense }
func (l *dense) OutputShape() []int  { return l.shape }
func (l *dense) Params() []*ml.Param { return []*ml.Param{l.weights, l.biases} }

func (l *dense) ThreadCopy(rnd *rand.Rand) Layer {
	return &dense{
		units:        l.units,
		activationFn: l.activationFn,
		weights:      l.weights.ThreadCopy(),
		biases:       l.biases.ThreadCopy(),
		shape:        l.shape,
	}
}

func (l *dense) Forward(x *mat.Dense, training bool) *mat.Dense {
	var rows, _ = x.Dims()
	var y = mat.NewDense(rows, l.units, nil)
	y.Mul(x, l.weights.Value)
	var b = l.biases.Value.RawRowView(0)
	for r := 0; r < rows; r++ {
		var row = y.RawRowView(r)
		for j := range row {
			row[j] = l.activationFn.Sigma(row[j] + b[j])
		}
	}
	l.x = x
	l.y = y
	return y
}

func (l *dense) Backward(grad *mat.Dense) *mat.Dense {
	var rows, _ = grad.Dims()
	var dz = mat.NewDense(rows, l.units, nil)
	var bGrad = l.biases.Grad.RawRowView(0)
	for r := 0; r < rows; r++ {
		var g = grad.RawRowView(r)
		var y = l.y.RawRowView(r)
		var d = dz.RawRowView(r)
		for j := range d {
			d[j] = g[j] * l.activationFn.SigmaPrime(y[j])
			bGrad[j] += d[j]
		}
	}

	var wGrad mat.Dense
	wGrad.Mul(l.x.T(), dz)
	l.weights.Grad.Add(l.weights.Grad, &wGrad)

	var _, inputSize = l.x.Dims()
	var dx = mat.NewDense(rows, inputSize, nil)
	dx.Mul(dz, l.weights.Value.T())
	return dx
}
