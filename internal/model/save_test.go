package model

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoad(t *testing.T) {
	var rnd = rand.New(rand.NewPCG(7, 0))
	var n, err = Build(smallTopology(), rnd)
	if err != nil {
		t.Fatal(err)
	}
	var dir = filepath.Join(t.TempDir(), "lotto_model")
	var manifest = NewManifest()
	manifest.Epochs = 3
	err = n.Save(dir, manifest)
	if err != nil {
		t.Fatal(err)
	}

	loaded, loadedManifest, err := Load(dir, rand.New(rand.NewPCG(8, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if loadedManifest.ID != manifest.ID || loadedManifest.Epochs != 3 {
		t.Errorf("manifest mismatch: %+v", loadedManifest)
	}
	if len(loadedManifest.Params) != len(n.Params()) {
		t.Errorf("params in manifest %v", len(loadedManifest.Params))
	}

	var input, _ = randomSample(rnd, 12, 5)
	expected, _ := n.Predict(input)
	actual, _ := loaded.Predict(input)
	for i := range expected {
		if math.Abs(expected[i]-actual[i]) > 1e-5 {
			t.Errorf("output %v: %v != %v", i, actual[i], expected[i])
		}
	}
}

func TestLoadBadMagic(t *testing.T) {
	var n, err = Build(smallTopology(), rand.New(rand.NewPCG(9, 0)))
	if err != nil {
		t.Fatal(err)
	}
	var dir = t.TempDir()
	err = n.Save(dir, NewManifest())
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(dir, WeightsFile), []byte{'B', 'Z', 2, 0, 0, 0, 0, 0}, 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = Load(dir, rand.New(rand.NewPCG(9, 0)))
	if err != ErrBadFormat {
		t.Errorf("expected ErrBadFormat, got %v", err)
	}
}

func TestLoadMissingDir(t *testing.T) {
	var _, _, err = Load(filepath.Join(t.TempDir(), "missing"), rand.New(rand.NewPCG(1, 0)))
	if err == nil {
		t.Error("expected error")
	}
}
