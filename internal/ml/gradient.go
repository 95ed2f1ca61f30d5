package ml

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type Gradient struct {
	M1 float64
	M2 float64
}

// Param is a trainable matrix with its accumulated gradient.
// Thread copies share Value and own Grad.
type Param struct {
	Name    string
	Value   *mat.Dense
	Grad    *mat.Dense
	L2      float64
	moments []Gradient
}

func NewParam(name string, rows, cols int, l2 float64) *Param {
	return &Param{
		Name:  name,
		Value: mat.NewDense(rows, cols, nil),
		Grad:  mat.NewDense(rows, cols, nil),
		L2:    l2,
	}
}

func (p *Param) ThreadCopy() *Param {
	var r, c = p.Value.Dims()
	return &Param{
		Name:  p.Name,
		Value: p.Value,
		Grad:  mat.NewDense(r, c, nil),
		L2:    p.L2,
	}
}

func (p *Param) Size() int {
	var r, c = p.Value.Dims()
	return r * c
}

// Data exposes the row-major backing slice of Value.
func (p *Param) Data() []float64 {
	return p.Value.RawMatrix().Data
}

func (p *Param) AddTo(main *Param) {
	main.Grad.Add(main.Grad, p.Grad)
	p.Grad.Zero()
}

// Penalty is the L2 regularization term l2*sum(w^2).
func (p *Param) Penalty() float64 {
	if p.L2 == 0 {
		return 0
	}
	var sum float64
	for _, w := range p.Data() {
		sum += w * w
	}
	return p.L2 * sum
}

type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
	step         int
}

func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
	}
}

// Step starts a new optimizer step; bias correction depends on the step count.
func (a *Adam) Step() {
	a.step++
}

// Apply updates p from its gradient sum scaled by scale (1/batch size) and resets the gradient.
func (a *Adam) Apply(p *Param, scale float64) {
	var w = p.Value.RawMatrix().Data
	var g = p.Grad.RawMatrix().Data
	if p.moments == nil {
		p.moments = make([]Gradient, len(w))
	}
	var step = float64(max(a.step, 1))
	var c1 = 1 - math.Pow(a.Beta1, step)
	var c2 = 1 - math.Pow(a.Beta2, step)
	for i := range w {
		var grad = g[i]*scale + 2*p.L2*w[i]
		var m = &p.moments[i]
		m.M1 = m.M1*a.Beta1 + grad*(1-a.Beta1)
		m.M2 = m.M2*a.Beta2 + (grad*grad)*(1-a.Beta2)
		w[i] -= a.LearningRate * (m.M1 / c1) / (math.Sqrt(m.M2/c2) + a.Epsilon)
		g[i] = 0
	}
}
