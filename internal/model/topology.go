package model

import (
	"errors"
	"fmt"
)

const (
	KindReshape   = "reshape"
	KindLSTM      = "lstm"
	KindDropout   = "dropout"
	KindAttention = "attention"
	KindFlatten   = "flatten"
	KindDense     = "dense"
)

const (
	InitGlorotNormal  = "glorotNormal"
	InitGlorotUniform = "glorotUniform"
)

var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrUnknownLayer  = errors.New("unknown layer kind")
)

// LayerConfig describes one layer independently of the backend that builds it.
type LayerConfig struct {
	Kind            string  `json:"kind"`
	Units           int     `json:"units,omitempty"`
	TargetShape     []int   `json:"targetShape,omitempty"`
	Rate            float64 `json:"rate,omitempty"`
	Activation      string  `json:"activation,omitempty"`
	Initializer     string  `json:"initializer,omitempty"`
	L2              float64 `json:"l2,omitempty"`
	ReturnSequences bool    `json:"returnSequences,omitempty"`
}

type Topology struct {
	InputShape []int         `json:"inputShape"`
	Layers     []LayerConfig `json:"layers"`
}

// NewALSTMTopology is the attention LSTM: reshape, LSTM, dropout, attention, flatten, dense.
// inputShape is (steps, rows, width).
func NewALSTMTopology(inputShape []int, lstmUnits, outputUnits int) Topology {
	return Topology{
		InputShape: inputShape,
		Layers: []LayerConfig{
			{Kind: KindReshape, TargetShape: []int{inputShape[0], inputShape[1] * inputShape[2]}},
			{Kind: KindLSTM, Units: lstmUnits, ReturnSequences: true, Initializer: InitGlorotNormal, L2: 0.001},
			{Kind: KindDropout, Rate: 0.5},
			{Kind: KindAttention, Activation: "tanh", Initializer: InitGlorotUniform},
			{Kind: KindFlatten},
			{Kind: KindDense, Units: outputUnits, Activation: "sigmoid", Initializer: InitGlorotNormal, L2: 0.01},
		},
	}
}

func (t *Topology) Validate() error {
	if len(t.InputShape) == 0 {
		return fmt.Errorf("%w: empty input shape", ErrShapeMismatch)
	}
	for _, d := range t.InputShape {
		if d <= 0 {
			return fmt.Errorf("%w: input shape %v", ErrShapeMismatch, t.InputShape)
		}
	}
	if len(t.Layers) == 0 {
		return errors.New("topology has no layers")
	}
	return nil
}

// InputSize is the number of values in one input example.
func (t *Topology) InputSize() int {
	return product(t.InputShape)
}

// matrixShape folds a shape into (rows, cols), the last dimension being cols.
func matrixShape(shape []int) (int, int) {
	if len(shape) == 1 {
		return 1, shape[0]
	}
	return product(shape[:len(shape)-1]), shape[len(shape)-1]
}

func product(shape []int) int {
	var res = 1
	for _, d := range shape {
		res *= d
	}
	return res
}
