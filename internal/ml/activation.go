package ml

import "math"

type IActivationFn interface {
	Sigma(x float64) float64
	// SigmaPrime is expressed through the activation value y = Sigma(x).
	SigmaPrime(y float64) float64
}

func ActivationByName(name string) (IActivationFn, bool) {
	switch name {
	case "", "linear":
		return &IdentityActivation{}, true
	case "sigmoid":
		return &SigmoidActivation{}, true
	case "tanh":
		return &TanhActivation{}, true
	case "relu":
		return &ReLuActivation{}, true
	}
	return nil, false
}

type IdentityActivation struct{}

func (*IdentityActivation) Sigma(x float64) float64      { return x }
func (*IdentityActivation) SigmaPrime(y float64) float64 { return 1 }

type ReLuActivation struct{}

func (*ReLuActivation) Sigma(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func (*ReLuActivation) SigmaPrime(y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0
}

type SigmoidActivation struct{}

func (s *SigmoidActivation) Sigma(x float64) float64 {
	return Sigmoid(x)
}

func (s *SigmoidActivation) SigmaPrime(y float64) float64 {
	return y * (1 - y)
}

type TanhActivation struct{}

func (*TanhActivation) Sigma(x float64) float64 {
	return math.Tanh(x)
}

func (*TanhActivation) SigmaPrime(y float64) float64 {
	return 1 - y*y
}
