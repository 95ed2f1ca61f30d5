package predictor

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChizhovVadim/lottoflow/internal/dataset"
	"github.com/ChizhovVadim/lottoflow/internal/domain"
	"github.com/ChizhovVadim/lottoflow/internal/logger"
	"github.com/ChizhovVadim/lottoflow/internal/model"
	"github.com/ChizhovVadim/lottoflow/internal/sequence"
)

type drawsProvider []domain.Draw

func (p drawsProvider) Load(ctx context.Context) ([]domain.Draw, error) {
	return p, nil
}

type betStore map[string][]domain.Bet

func (s betStore) SaveBets(ctx context.Context, modelID, strategy string, bets []domain.Bet) error {
	var key = modelID + "/" + strategy
	s[key] = append(s[key], bets...)
	return nil
}

func testDraws(count int) drawsProvider {
	var res = make([]domain.Draw, count)
	for i := range res {
		var numbers [domain.NumbersPerDraw]int
		for j := range numbers {
			numbers[j] = (i*13+j*3)%domain.MaxNumber + 1
		}
		res[i] = domain.NewDraw(fmt.Sprintf("2022-03-%02d", i+1), numbers, i%domain.SuperzahlCount)
	}
	return res
}

func saveTestModel(t *testing.T) (string, model.Manifest) {
	t.Helper()
	var topology = model.NewALSTMTopology(
		[]int{sequence.WindowSize, sequence.RowsPerDraw, sequence.RowWidth}, 4, sequence.TargetSize)
	var net, err = model.Build(topology, rand.New(rand.NewPCG(5, 0)))
	if err != nil {
		t.Fatal(err)
	}
	var dir = filepath.Join(t.TempDir(), "lotto_model")
	var manifest = model.NewManifest()
	err = net.Save(dir, manifest)
	if err != nil {
		t.Fatal(err)
	}
	return dir, manifest
}

func testConfig(dir string) Config {
	return Config{
		ModelDir:     dir,
		HoldoutRatio: 0.2,
		Temperature:  0.99,
		MaxAttempts:  1000,
		Threads:      2,
		Seed:         7,
	}
}

func TestRun(t *testing.T) {
	var dir, manifest = saveTestModel(t)
	var store = make(betStore)
	var out strings.Builder
	var result, err = Run(context.Background(), logger.Nop(), testDraws(12), store, testConfig(dir), &out)
	if err != nil {
		t.Fatal(err)
	}
	// 2 holdout windows and the window of the latest draws
	if len(result.Predictions) != 3 {
		t.Fatalf("expected 3 predictions, got %v", len(result.Predictions))
	}
	if !result.HasNextBet {
		t.Error("next draw bet expected")
	}
	if len(result.Bets) == 0 || len(result.Bets) > 3 {
		t.Errorf("unexpected bets %v", result.Bets)
	}
	for _, bet := range result.Bets {
		if bet.HasRepeats() {
			t.Errorf("bet with repeats %v", bet)
		}
		if bet.Superzahl < 0 || bet.Superzahl >= domain.SuperzahlCount {
			t.Errorf("superzahl out of range %v", bet)
		}
	}
	if result.Manifest.ID != manifest.ID {
		t.Errorf("manifest id %v, expected %v", result.Manifest.ID, manifest.ID)
	}
	if len(store[manifest.ID+"/"+dataset.StrategySample]) != len(result.Bets) {
		t.Errorf("sampled bets not stored: %v", store)
	}
	if best := store[manifest.ID+"/"+dataset.StrategyBest]; len(best) != 1 || best[0] != result.BestBet {
		t.Errorf("best bet not stored: %v", store)
	}
	for _, expected := range []string{"Predictions shape: [3,304]", "Decoded predictions (temp 0.99)", "Best bet: ", "Next draw best bet: "} {
		if !strings.Contains(out.String(), expected) {
			t.Errorf("output has no %q", expected)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	var dir, _ = saveTestModel(t)
	var first, err = Run(context.Background(), logger.Nop(), testDraws(15), nil, testConfig(dir), &strings.Builder{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(context.Background(), logger.Nop(), testDraws(15), nil, testConfig(dir), &strings.Builder{})
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Bets) != len(second.Bets) || first.BestBet != second.BestBet {
		t.Fatalf("runs differ: %v %v", first.Bets, second.Bets)
	}
	for i := range first.Bets {
		if first.Bets[i] != second.Bets[i] {
			t.Errorf("bet %v differs: %v %v", i, first.Bets[i], second.Bets[i])
		}
	}
}

func TestRunOnlyLatestWindow(t *testing.T) {
	var dir, _ = saveTestModel(t)
	var result, err = Run(context.Background(), logger.Nop(), testDraws(5), nil, testConfig(dir), &strings.Builder{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Predictions) != 1 || !result.HasNextBet {
		t.Errorf("expected only the next draw prediction, got %v", len(result.Predictions))
	}
}

func TestRunNothingToPredict(t *testing.T) {
	var dir, _ = saveTestModel(t)
	var _, err = Run(context.Background(), logger.Nop(), testDraws(3), nil, testConfig(dir), &strings.Builder{})
	if !errors.Is(err, ErrNothingToPredict) {
		t.Errorf("expected ErrNothingToPredict, got %v", err)
	}
}

func TestRunMissingModel(t *testing.T) {
	var _, err = Run(context.Background(), logger.Nop(), testDraws(12), nil,
		testConfig(filepath.Join(t.TempDir(), "none")), &strings.Builder{})
	if err == nil {
		t.Error("expected error for missing model")
	}
}
