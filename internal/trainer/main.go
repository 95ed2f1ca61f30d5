package trainer

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/ChizhovVadim/lottoflow/internal/decoder"
	"github.com/ChizhovVadim/lottoflow/internal/domain"
	"github.com/ChizhovVadim/lottoflow/internal/model"
	"github.com/ChizhovVadim/lottoflow/internal/sequence"
	"go.uber.org/zap"
)

type IDrawProvider interface {
	Load(ctx context.Context) ([]domain.Draw, error)
}

type Config struct {
	LSTMUnits       int
	Epochs          int
	BatchSize       int
	LearningRate    float64
	HoldoutRatio    float64
	ValidationSplit float64
	Threads         int
	Seed            uint64
	ModelDir        string
}

type Result struct {
	Manifest    model.Manifest
	Holdout     []sequence.Sample
	Predictions [][]float64
}

// Run trains the attention LSTM on the draws of provider, predicts the holdout
// and saves the best epoch into cfg.ModelDir.
func Run(
	ctx context.Context,
	log *zap.SugaredLogger,
	provider IDrawProvider,
	cfg Config,
	out io.Writer,
) (Result, error) {
	dataset, err := loadDataset(ctx, provider, cfg.HoldoutRatio, cfg.ValidationSplit)
	if err != nil {
		return Result{}, err
	}
	log.Infow("Loaded dataset",
		"draws", dataset.draws,
		"training", len(dataset.training),
		"validation", len(dataset.validation),
		"holdout", len(dataset.holdout))

	var rnd = rand.New(rand.NewPCG(cfg.Seed, 0))
	var topology = model.NewALSTMTopology(
		[]int{sequence.WindowSize, sequence.RowsPerDraw, sequence.RowWidth},
		cfg.LSTMUnits, sequence.TargetSize)
	net, err := model.Build(topology, rnd)
	if err != nil {
		return Result{}, err
	}
	net.Summary(out)
	fmt.Fprintf(out, "Input shape: [%v,%v,%v,%v]\n",
		len(dataset.training), sequence.WindowSize, sequence.RowsPerDraw, sequence.RowWidth)
	fmt.Fprintf(out, "Target shape: [%v,%v]\n", len(dataset.training), sequence.TargetSize)

	var trainer = NewTrainer(log, net, cfg.Threads, cfg.BatchSize, cfg.LearningRate, cfg.Seed)
	summary, err := trainer.Train(ctx, dataset.training, dataset.validation, cfg.Epochs)
	if err != nil {
		return Result{}, err
	}

	var manifest = model.NewManifest()
	manifest.Epochs = cfg.Epochs
	manifest.BestEpoch = summary.bestEpoch
	manifest.ValidationCost = summary.bestCost
	if cfg.ModelDir != "" {
		err = net.Save(cfg.ModelDir, manifest)
		if err != nil {
			return Result{}, fmt.Errorf("save model: %w", err)
		}
		log.Infow("Model saved", "dir", cfg.ModelDir, "id", manifest.ID, "bestEpoch", summary.bestEpoch)
	}

	var result = Result{
		Manifest: manifest,
		Holdout:  dataset.holdout,
	}
	if len(dataset.holdout) == 0 {
		return result, nil
	}
	result.Predictions, err = model.PredictBatch(ctx, net, inputs(dataset.holdout), cfg.Threads)
	if err != nil {
		return Result{}, err
	}
	decoder.WritePredictions(out, result.Predictions)
	bet, err := decoder.BestBet(result.Predictions[0])
	if err != nil {
		return Result{}, err
	}
	fmt.Fprintf(out, "Best bet: %v\n", decoder.FormatBet(bet))
	return result, nil
}

func inputs(samples []sequence.Sample) [][]float64 {
	var res = make([][]float64, len(samples))
	for i := range samples {
		res[i] = samples[i].Input
	}
	return res
}
