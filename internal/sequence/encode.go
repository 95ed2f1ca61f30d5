package sequence

import (
	"errors"
	"fmt"
	"math"

	"github.com/ChizhovVadim/lottoflow/internal/domain"
)

const (
	WindowSize   = 5
	RowsPerDraw  = domain.NumbersPerDraw + 1
	RowWidth     = domain.MaxNumber
	NumbersWidth = domain.NumbersPerDraw * domain.MaxNumber
	TargetSize   = NumbersWidth + domain.SuperzahlCount
	WindowLen    = WindowSize * RowsPerDraw * RowWidth
)

var (
	ErrOutOfRange    = errors.New("number out of range")
	ErrCountMismatch = errors.New("mismatch in input and output sequences length")
)

// Window holds WindowSize draws, each as RowsPerDraw one-hot rows of RowWidth, step-major.
type Window []float64

func (w Window) At(step, row, col int) float64 {
	return w[(step*RowsPerDraw+row)*RowWidth+col]
}

// Target is the encoding of the draw that follows a window.
type Target []float64

type Sample struct {
	Input  Window
	Target Target
}

// OneHot writes a one-hot vector for n (1-based) into dst.
func OneHot(dst []float64, n int) error {
	if n < 1 || n > len(dst) {
		return fmt.Errorf("%w: %v not in 1..%v", ErrOutOfRange, n, len(dst))
	}
	dst[n-1] = 1
	return nil
}

// encodedDraw is a draw in target layout: 6 blocks of 49 then the Superzahl block of 10.
type encodedDraw []float64

func encodeDraw(d *domain.Draw) (encodedDraw, error) {
	var res = make(encodedDraw, TargetSize)
	for i, n := range d.Numbers() {
		var err = OneHot(res[i*RowWidth:(i+1)*RowWidth], n)
		if err != nil {
			return nil, fmt.Errorf("draw %v Zahl%v: %w", d.Date, i+1, err)
		}
	}
	// Superzahl 0..9 maps to index 0..9.
	var err = OneHot(res[NumbersWidth:], d.Superzahl+1)
	if err != nil {
		return nil, fmt.Errorf("draw %v Superzahl: %w", d.Date, err)
	}
	return res, nil
}

// writeStep copies an encoded draw into a window step. The Superzahl row is zero padded.
func writeStep(dst []float64, e encodedDraw) {
	copy(dst[:NumbersWidth], e[:NumbersWidth])
	copy(dst[NumbersWidth:], e[NumbersWidth:])
}

func Encode(draws []domain.Draw) ([]Sample, error) {
	var encoded = make([]encodedDraw, len(draws))
	for i := range draws {
		var e, err = encodeDraw(&draws[i])
		if err != nil {
			return nil, err
		}
		encoded[i] = e
	}

	var inputs []Window
	var targets []Target
	for i := 0; i+WindowSize < len(encoded); i++ {
		inputs = append(inputs, buildWindow(encoded[i:i+WindowSize]))
		targets = append(targets, Target(encoded[i+WindowSize]))
	}

	if len(inputs) != len(targets) {
		return nil, fmt.Errorf("%w: %v inputs, %v targets", ErrCountMismatch, len(inputs), len(targets))
	}

	var result = make([]Sample, len(inputs))
	for i := range inputs {
		result[i] = Sample{
			Input:  inputs[i],
			Target: targets[i],
		}
	}
	return result, nil
}

// EncodeLatest encodes the last WindowSize draws, the input for predicting the next draw.
func EncodeLatest(draws []domain.Draw) (Window, bool, error) {
	if len(draws) < WindowSize {
		return nil, false, nil
	}
	var tail = draws[len(draws)-WindowSize:]
	var encoded = make([]encodedDraw, WindowSize)
	for i := range tail {
		var e, err = encodeDraw(&tail[i])
		if err != nil {
			return nil, false, err
		}
		encoded[i] = e
	}
	return buildWindow(encoded), true, nil
}

func buildWindow(steps []encodedDraw) Window {
	var w = make(Window, WindowLen)
	const stepLen = RowsPerDraw * RowWidth
	for i, e := range steps {
		writeStep(w[i*stepLen:(i+1)*stepLen], e)
	}
	return w
}

// Split keeps the first floor((1-tailRatio)*len) samples in head and the rest in tail.
func Split(samples []Sample, tailRatio float64) (head, tail []Sample) {
	var headSize = int(math.Floor((1 - tailRatio) * float64(len(samples))))
	headSize = max(0, min(headSize, len(samples)))
	return samples[:headSize], samples[headSize:]
}
