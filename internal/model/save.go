package model

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	ManifestFile = "model.json"
	WeightsFile  = "weights.bin"
)

var ErrBadFormat = errors.New("model weights format is not supported")

type ParamInfo struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// Manifest is the model.json of a saved model directory.
type Manifest struct {
	ID             string      `json:"id"`
	CreatedAt      time.Time   `json:"createdAt"`
	Epochs         int         `json:"epochs"`
	BestEpoch      int         `json:"bestEpoch"`
	ValidationCost float64     `json:"validationCost"`
	Topology       Topology    `json:"topology"`
	Params         []ParamInfo `json:"params"`
}

func NewManifest() Manifest {
	return Manifest{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// Save writes model.json and weights.bin into dir.
//
// Binary layout of weights.bin:
//   - all the data is stored in little-endian layout
//   - matrices are written row-major as float32
//   - 4 bytes magic/version: 'L', 'F', 1 (major), 0 (minor)
//   - 4 bytes (uint32) number of parameter matrices
//   - for every matrix: 4 bytes rows, 4 bytes cols, then rows*cols values
func (n *Network) Save(dir string, manifest Manifest) error {
	var err = os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		return err
	}

	var params = n.Params()
	manifest.Topology = n.topology
	manifest.Params = manifest.Params[:0]
	for _, p := range params {
		var r, c = p.Value.Dims()
		manifest.Params = append(manifest.Params, ParamInfo{Name: p.Name, Rows: r, Cols: c})
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	err = os.WriteFile(filepath.Join(dir, ManifestFile), data, 0644)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, WeightsFile))
	if err != nil {
		return err
	}
	defer f.Close()
	var w = bufio.NewWriter(f)

	buf := []byte{'L', 'F', 1, 0}
	_, err = w.Write(buf)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf, uint32(len(params)))
	_, err = w.Write(buf)
	if err != nil {
		return err
	}
	for _, p := range params {
		var r, c = p.Value.Dims()
		var header = make([]byte, 8)
		binary.LittleEndian.PutUint32(header[0:], uint32(r))
		binary.LittleEndian.PutUint32(header[4:], uint32(c))
		_, err = w.Write(header)
		if err != nil {
			return err
		}
		err = writeSlice(w, p.Data())
		if err != nil {
			return err
		}
	}
	err = w.Flush()
	if err != nil {
		return err
	}
	return f.Close()
}

func LoadManifest(dir string) (Manifest, error) {
	var manifest Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return manifest, err
	}
	err = json.Unmarshal(data, &manifest)
	if err != nil {
		return manifest, fmt.Errorf("parse %v: %w", ManifestFile, err)
	}
	return manifest, nil
}

// Load rebuilds a saved network. Weights are overwritten after initialization, so rnd only feeds dropout.
func Load(dir string, rnd *rand.Rand) (*Network, Manifest, error) {
	manifest, err := LoadManifest(dir)
	if err != nil {
		return nil, manifest, err
	}
	n, err := Build(manifest.Topology, rnd)
	if err != nil {
		return nil, manifest, err
	}

	f, err := os.Open(filepath.Join(dir, WeightsFile))
	if err != nil {
		return nil, manifest, err
	}
	defer f.Close()
	var r = bufio.NewReader(f)

	buf := make([]byte, 4)
	_, err = io.ReadFull(r, buf)
	if err != nil {
		return nil, manifest, err
	}
	if buf[0] != 'L' || buf[1] != 'F' || buf[2] != 1 || buf[3] != 0 {
		return nil, manifest, ErrBadFormat
	}
	_, err = io.ReadFull(r, buf)
	if err != nil {
		return nil, manifest, err
	}
	var params = n.Params()
	if count := binary.LittleEndian.Uint32(buf); int(count) != len(params) {
		return nil, manifest, fmt.Errorf("%w: %v parameter matrices, topology has %v", ErrShapeMismatch, count, len(params))
	}

	var header = make([]byte, 8)
	for _, p := range params {
		_, err = io.ReadFull(r, header)
		if err != nil {
			return nil, manifest, err
		}
		var rows = int(binary.LittleEndian.Uint32(header[0:]))
		var cols = int(binary.LittleEndian.Uint32(header[4:]))
		var pr, pc = p.Value.Dims()
		if rows != pr || cols != pc {
			return nil, manifest, fmt.Errorf("%w: %v is %vx%v, expected %vx%v", ErrShapeMismatch, p.Name, rows, cols, pr, pc)
		}
		err = readSlice(r, p.Data())
		if err != nil {
			return nil, manifest, err
		}
	}
	return n, manifest, nil
}

func writeSlice(w io.Writer, data []float64) error {
	buf := make([]byte, 4)
	for j := range data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(data[j])))
		_, err := w.Write(buf)
		if err != nil {
			return err
		}
	}
	return nil
}

func readSlice(r io.Reader, data []float64) error {
	buf := make([]byte, 4)
	for j := range data {
		_, err := io.ReadFull(r, buf)
		if err != nil {
			return err
		}
		data[j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	}
	return nil
}
