package model

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func smallTopology() Topology {
	return Topology{
		InputShape: []int{3, 2, 2},
		Layers: []LayerConfig{
			{Kind: KindReshape, TargetShape: []int{3, 4}},
			{Kind: KindLSTM, Units: 3, ReturnSequences: true, Initializer: InitGlorotNormal, L2: 0.001},
			{Kind: KindDropout, Rate: 0},
			{Kind: KindAttention, Activation: "tanh", Initializer: InitGlorotUniform},
			{Kind: KindFlatten},
			{Kind: KindDense, Units: 5, Activation: "sigmoid", Initializer: InitGlorotNormal, L2: 0.01},
		},
	}
}

func randomSample(rnd *rand.Rand, inputSize, outputSize int) ([]float64, []float64) {
	var input = make([]float64, inputSize)
	for i := range input {
		input[i] = rnd.Float64()*2 - 1
	}
	var target = make([]float64, outputSize)
	for i := range target {
		if rnd.IntN(2) == 1 {
			target[i] = 1
		}
	}
	return input, target
}

func TestALSTMShapes(t *testing.T) {
	var n, err = Build(NewALSTMTopology([]int{5, 7, 49}, 128, 304), rand.New(rand.NewPCG(1, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if n.OutputSize() != 304 {
		t.Errorf("output size %v", n.OutputSize())
	}
	const expectedParams = 4*(128*(343+128)+128) + (128 + 1) + (128*304 + 304)
	if n.ParamCount() != expectedParams {
		t.Errorf("param count %v, expected %v", n.ParamCount(), expectedParams)
	}
	var input = make([]float64, 5*7*49)
	input[0] = 1
	output, err := n.Predict(input)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range output {
		if p <= 0 || p >= 1 {
			t.Fatalf("sigmoid output out of range: %v", p)
		}
	}
}

func TestBuildShapeMismatch(t *testing.T) {
	var topology = smallTopology()
	topology.Layers[0].TargetShape = []int{3, 5}
	var _, err = Build(topology, rand.New(rand.NewPCG(1, 0)))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestPredictInputSize(t *testing.T) {
	var n, err = Build(smallTopology(), rand.New(rand.NewPCG(1, 0)))
	if err != nil {
		t.Fatal(err)
	}
	_, err = n.Predict(make([]float64, 7))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

// Compares back propagation with central finite differences.
func TestGradients(t *testing.T) {
	var rnd = rand.New(rand.NewPCG(42, 0))
	var n, err = Build(smallTopology(), rnd)
	if err != nil {
		t.Fatal(err)
	}
	var input, target = randomSample(rnd, 12, 5)
	n.Train(input, target)

	const h = 1e-6
	for _, p := range n.Params() {
		var data = p.Data()
		var grad = p.Grad.RawMatrix().Data
		for i := range data {
			var saved = data[i]
			data[i] = saved + h
			var plus, _ = n.CalcCost(input, target)
			data[i] = saved - h
			var minus, _ = n.CalcCost(input, target)
			data[i] = saved
			var numeric = (plus - minus) / (2 * h)
			if math.Abs(numeric-grad[i]) > 1e-6+1e-4*math.Abs(numeric) {
				t.Errorf("%v[%v]: backprop %v, numeric %v", p.Name, i, grad[i], numeric)
			}
		}
	}
}

func TestThreadCopySharesWeights(t *testing.T) {
	var rnd = rand.New(rand.NewPCG(3, 0))
	var main, err = Build(smallTopology(), rnd)
	if err != nil {
		t.Fatal(err)
	}
	var worker = main.ThreadCopy(rand.New(rand.NewPCG(4, 0)))
	var input, target = randomSample(rnd, 12, 5)

	worker.Train(input, target)
	main.Train(input, target)
	var expected = main.Params()[0].Grad.At(0, 0) * 2

	worker.AddGradients(main)
	if got := main.Params()[0].Grad.At(0, 0); math.Abs(got-expected) > 1e-12 {
		t.Errorf("merged gradient %v, expected %v", got, expected)
	}
	if worker.Params()[0].Grad.At(0, 0) != 0 {
		t.Error("worker gradient not reset")
	}
	if worker.Params()[0].Value != main.Params()[0].Value {
		t.Error("weights are not shared")
	}
}

func TestDropoutOnlyWhileTraining(t *testing.T) {
	var topology = smallTopology()
	topology.Layers[2].Rate = 0.5
	var n, err = Build(topology, rand.New(rand.NewPCG(5, 0)))
	if err != nil {
		t.Fatal(err)
	}
	var input, _ = randomSample(rand.New(rand.NewPCG(6, 0)), 12, 5)
	a, _ := n.Predict(input)
	b, _ := n.Predict(input)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("inference is not deterministic: %v %v", a, b)
		}
	}
}
