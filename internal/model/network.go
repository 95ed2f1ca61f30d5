package model

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/ChizhovVadim/lottoflow/internal/ml"
	"gonum.org/v1/gonum/mat"
)

// Network materializes a Topology on gonum matrices.
type Network struct {
	topology Topology
	layers   []Layer
	cost     ml.IModelCost
	outGrad  []float64
}

func Build(topology Topology, rnd *rand.Rand) (*Network, error) {
	var err = topology.Validate()
	if err != nil {
		return nil, err
	}
	var n = &Network{
		topology: topology,
		cost:     &ml.BinaryCrossEntropy{},
	}
	var shape = topology.InputShape
	for i, cfg := range topology.Layers {
		var layer, err = buildLayer(cfg, i, shape, rnd)
		if err != nil {
			return nil, fmt.Errorf("layer %v (%v): %w", i, cfg.Kind, err)
		}
		n.layers = append(n.layers, layer)
		shape = layer.OutputShape()
	}
	n.outGrad = make([]float64, product(shape))
	return n, nil
}

func (n *Network) Topology() Topology { return n.topology }

func (n *Network) OutputSize() int { return len(n.outGrad) }

// ThreadCopy shares weights with n and owns activations, gradients and the dropout source.
func (n *Network) ThreadCopy(rnd *rand.Rand) *Network {
	var layers = make([]Layer, len(n.layers))
	for i, l := range n.layers {
		layers[i] = l.ThreadCopy(rnd)
	}
	return &Network{
		topology: n.topology,
		layers:   layers,
		cost:     n.cost,
		outGrad:  make([]float64, len(n.outGrad)),
	}
}

func (n *Network) Params() []*ml.Param {
	var res []*ml.Param
	for _, l := range n.layers {
		res = append(res, l.Params()...)
	}
	return res
}

func (n *Network) ParamCount() int {
	var res int
	for _, p := range n.Params() {
		res += p.Size()
	}
	return res
}

// Penalty is the sum of the L2 terms of all parameters.
func (n *Network) Penalty() float64 {
	var res float64
	for _, p := range n.Params() {
		res += p.Penalty()
	}
	return res
}

func (n *Network) forward(input []float64, training bool) []float64 {
	var rows, cols = matrixShape(n.topology.InputShape)
	var x = mat.NewDense(rows, cols, input)
	for _, l := range n.layers {
		x = l.Forward(x, training)
	}
	return x.RawMatrix().Data
}

// Predict runs inference. The returned slice is owned by the caller.
func (n *Network) Predict(input []float64) ([]float64, error) {
	if len(input) != n.topology.InputSize() {
		return nil, fmt.Errorf("%w: input %v, expected %v", ErrShapeMismatch, len(input), n.topology.InputSize())
	}
	var output = n.forward(input, false)
	var res = make([]float64, len(output))
	copy(res, output)
	return res, nil
}

// CalcCost returns loss and binary accuracy in inference mode.
func (n *Network) CalcCost(input, target []float64) (float64, float64) {
	var predicted = n.forward(input, false)
	return n.cost.Cost(predicted, target), ml.BinaryAccuracy(predicted, target)
}

// Train accumulates the gradients of one sample and returns its loss and accuracy.
func (n *Network) Train(input, target []float64) (float64, float64) {
	var predicted = n.forward(input, true)
	var cost = n.cost.Cost(predicted, target)
	var accuracy = ml.BinaryAccuracy(predicted, target)
	n.cost.CostPrime(predicted, target, n.outGrad)
	var rows, cols = matrixShape(n.layers[len(n.layers)-1].OutputShape())
	var grad = mat.NewDense(rows, cols, n.outGrad)
	// back propagation
	for i := len(n.layers) - 1; i >= 0; i-- {
		grad = n.layers[i].Backward(grad)
	}
	return cost, accuracy
}

func (n *Network) AddGradients(main *Network) {
	if n == main {
		return
	}
	var params = n.Params()
	var mainParams = main.Params()
	for i := range params {
		params[i].AddTo(mainParams[i])
	}
}

func (n *Network) ApplyGradients(optimizer *ml.Adam, batchSize int) {
	optimizer.Step()
	var scale = 1 / float64(batchSize)
	for _, p := range n.Params() {
		optimizer.Apply(p, scale)
	}
}

// Snapshot copies all weights, Restore puts them back.
func (n *Network) Snapshot() [][]float64 {
	var params = n.Params()
	var res = make([][]float64, len(params))
	for i, p := range params {
		res[i] = append([]float64(nil), p.Data()...)
	}
	return res
}

func (n *Network) Restore(snapshot [][]float64) {
	for i, p := range n.Params() {
		copy(p.Data(), snapshot[i])
	}
}

func (n *Network) Summary(w io.Writer) {
	fmt.Fprintf(w, "%-4v %-12v %-14v %v\n", "#", "Layer", "Output shape", "Params")
	fmt.Fprintf(w, "%-4v %-12v %-14v %v\n", "", "input", fmt.Sprint(n.topology.InputShape), 0)
	for i, l := range n.layers {
		var count int
		for _, p := range l.Params() {
			count += p.Size()
		}
		fmt.Fprintf(w, "%-4v %-12v %-14v %v\n", i, l.Kind(), fmt.Sprint(l.OutputShape()), count)
	}
	fmt.Fprintf(w, "Total params: %v\n", n.ParamCount())
}
