package model

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ChizhovVadim/lottoflow/internal/ml"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// lstm is a single LSTM layer with gates ordered input, forget, cell, output.
// The kernel carries the L2 penalty, the recurrent kernel does not.
type lstm struct {
	units           int
	inputSize       int
	steps           int
	returnSequences bool
	kernel          *ml.Param
	recurrent       *ml.Param
	biases          *ml.Param

	x     *mat.Dense
	gates [][]float64
	cells [][]float64
	tanhC [][]float64
	hs    [][]float64
}

func newLSTM(cfg LayerConfig, index int, inShape []int, rnd *rand.Rand) (*lstm, error) {
	if len(inShape) != 2 {
		return nil, fmt.Errorf("%w: lstm expects (steps, features), got %v", ErrShapeMismatch, inShape)
	}
	if cfg.Units <= 0 {
		return nil, fmt.Errorf("lstm units %v", cfg.Units)
	}
	var units = cfg.Units
	var l = &lstm{
		units:           units,
		inputSize:       inShape[1],
		steps:           inShape[0],
		returnSequences: cfg.ReturnSequences,
		kernel:          ml.NewParam(fmt.Sprintf("lstm%v/kernel", index), inShape[1], 4*units, cfg.L2),
		recurrent:       ml.NewParam(fmt.Sprintf("lstm%v/recurrent", index), units, 4*units, 0),
		biases:          ml.NewParam(fmt.Sprintf("lstm%v/bias", index), 1, 4*units, 0),
	}
	initWeights(rnd, l.kernel, cfg.Initializer)
	initWeights(rnd, l.recurrent, cfg.Initializer)
	// unit forget bias
	var b = l.biases.Data()
	for j := units; j < 2*units; j++ {
		b[j] = 1
	}
	return l, nil
}

func (l *lstm) Kind() string { return KindLSTM }

func (l *lstm) OutputShape() []int {
	if l.returnSequences {
		return []int{l.steps, l.units}
	}
	return []int{1, l.units}
}

func (l *lstm) Params() []*ml.Param {
	return []*ml.Param{l.kernel, l.recurrent, l.biases}
}

func (l *lstm) ThreadCopy(rnd *rand.Rand) Layer {
	return &lstm{
		units:           l.units,
		inputSize:       l.inputSize,
		steps:           l.steps,
		returnSequences: l.returnSequences,
		kernel:          l.kernel.ThreadCopy(),
		recurrent:       l.recurrent.ThreadCopy(),
		biases:          l.biases.ThreadCopy(),
	}
}

func (l *lstm) Forward(x *mat.Dense, training bool) *mat.Dense {
	var units = l.units
	l.x = x
	l.gates = make([][]float64, l.steps)
	l.tanhC = make([][]float64, l.steps)
	l.cells = make([][]float64, l.steps+1)
	l.hs = make([][]float64, l.steps+1)
	l.cells[0] = make([]float64, units)
	l.hs[0] = make([]float64, units)

	var zx mat.Dense
	zx.Mul(x, l.kernel.Value)
	var b = l.biases.Value.RawRowView(0)
	var zh = mat.NewVecDense(4*units, nil)

	for t := 0; t < l.steps; t++ {
		zh.MulVec(l.recurrent.Value.T(), mat.NewVecDense(units, l.hs[t]))
		var z = zx.RawRowView(t)
		var gates = make([]float64, 4*units)
		for j := range gates {
			var v = z[j] + zh.AtVec(j) + b[j]
			if j >= 2*units && j < 3*units {
				gates[j] = math.Tanh(v)
			} else {
				gates[j] = ml.Sigmoid(v)
			}
		}
		var cPrev = l.cells[t]
		var c = make([]float64, units)
		var tc = make([]float64, units)
		var h = make([]float64, units)
		for j := 0; j < units; j++ {
			var i, f, g, o = gates[j], gates[units+j], gates[2*units+j], gates[3*units+j]
			c[j] = f*cPrev[j] + i*g
			tc[j] = math.Tanh(c[j])
			h[j] = o * tc[j]
		}
		l.gates[t] = gates
		l.cells[t+1] = c
		l.tanhC[t] = tc
		l.hs[t+1] = h
	}

	if !l.returnSequences {
		return mat.NewDense(1, units, l.hs[l.steps])
	}
	var out = mat.NewDense(l.steps, units, nil)
	for t := 0; t < l.steps; t++ {
		out.SetRow(t, l.hs[t+1])
	}
	return out
}

func (l *lstm) Backward(grad *mat.Dense) *mat.Dense {
	var units = l.units
	var dx = mat.NewDense(l.steps, l.inputSize, nil)
	var dhNext = make([]float64, units)
	var dcNext = make([]float64, units)
	var dz = make([]float64, 4*units)
	var dzVec = mat.NewVecDense(4*units, dz)
	var bGrad = l.biases.Grad.RawRowView(0)

	for t := l.steps - 1; t >= 0; t-- {
		var dh = dhNext
		if l.returnSequences {
			floats.Add(dh, grad.RawRowView(t))
		} else if t == l.steps-1 {
			floats.Add(dh, grad.RawRowView(0))
		}
		var gates = l.gates[t]
		var cPrev = l.cells[t]
		var tc = l.tanhC[t]
		for j := 0; j < units; j++ {
			var i, f, g, o = gates[j], gates[units+j], gates[2*units+j], gates[3*units+j]
			var dc = dh[j]*o*(1-tc[j]*tc[j]) + dcNext[j]
			dz[j] = dc * g * i * (1 - i)
			dz[units+j] = dc * cPrev[j] * f * (1 - f)
			dz[2*units+j] = dc * i * (1 - g*g)
			dz[3*units+j] = dh[j] * tc[j] * o * (1 - o)
			dcNext[j] = dc * f
		}
		for j := range dz {
			bGrad[j] += dz[j]
		}
		l.kernel.Grad.RankOne(l.kernel.Grad, 1, l.x.RowView(t), dzVec)
		l.recurrent.Grad.RankOne(l.recurrent.Grad, 1, mat.NewVecDense(units, l.hs[t]), dzVec)

		mat.NewVecDense(l.inputSize, dx.RawRowView(t)).MulVec(l.kernel.Value, dzVec)
		mat.NewVecDense(units, dhNext).MulVec(l.recurrent.Value, dzVec)
	}
	return dx
}
