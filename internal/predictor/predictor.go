package predictor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/ChizhovVadim/lottoflow/internal/dataset"
	"github.com/ChizhovVadim/lottoflow/internal/decoder"
	"github.com/ChizhovVadim/lottoflow/internal/domain"
	"github.com/ChizhovVadim/lottoflow/internal/model"
	"github.com/ChizhovVadim/lottoflow/internal/sequence"
	"go.uber.org/zap"
)

var ErrNothingToPredict = errors.New("no windows to predict")

type IDrawProvider interface {
	Load(ctx context.Context) ([]domain.Draw, error)
}

type IBetStore interface {
	SaveBets(ctx context.Context, modelID, strategy string, bets []domain.Bet) error
}

type Config struct {
	ModelDir     string
	HoldoutRatio float64
	Temperature  float64
	MaxAttempts  int
	Threads      int
	Seed         uint64
}

type Result struct {
	Manifest    model.Manifest
	Predictions [][]float64
	Bets        []domain.Bet
	BestBet     domain.Bet
	// NextBet is decoded from the window of the latest draws.
	NextBet    domain.Bet
	HasNextBet bool
}

// Run reloads the saved model, predicts the holdout windows followed by the
// window of the latest draws and decodes bets. Bets go to store when it is not nil.
func Run(
	ctx context.Context,
	log *zap.SugaredLogger,
	provider IDrawProvider,
	store IBetStore,
	cfg Config,
	out io.Writer,
) (Result, error) {
	var rnd = rand.New(rand.NewPCG(cfg.Seed, 0))
	net, manifest, err := model.Load(cfg.ModelDir, rnd)
	if err != nil {
		return Result{}, fmt.Errorf("load model %v: %w", cfg.ModelDir, err)
	}
	log.Infow("Loaded model", "id", manifest.ID, "bestEpoch", manifest.BestEpoch, "params", net.ParamCount())

	draws, err := provider.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load draws: %w", err)
	}
	samples, err := sequence.Encode(draws)
	if err != nil {
		return Result{}, fmt.Errorf("encode draws: %w", err)
	}
	var _, holdout = sequence.Split(samples, cfg.HoldoutRatio)
	var inputs = make([][]float64, 0, len(holdout)+1)
	for i := range holdout {
		inputs = append(inputs, holdout[i].Input)
	}
	latest, hasLatest, err := sequence.EncodeLatest(draws)
	if err != nil {
		return Result{}, err
	}
	if hasLatest {
		inputs = append(inputs, latest)
	}
	if len(inputs) == 0 {
		return Result{}, fmt.Errorf("%w: %v draws", ErrNothingToPredict, len(draws))
	}
	log.Infow("Predicting", "holdout", len(holdout), "next", hasLatest)

	predictions, err := model.PredictBatch(ctx, net, inputs, cfg.Threads)
	if err != nil {
		return Result{}, err
	}
	decoder.WritePredictions(out, predictions)

	var sampler = decoder.NewSampler(cfg.Temperature, cfg.MaxAttempts, rnd)
	bets, err := sampler.SampleBets(ctx, predictions)
	if err != nil {
		return Result{}, err
	}
	if sampler.Fallbacks() != 0 {
		log.Warnw("Sampling fell back to drawing without replacement", "bets", sampler.Fallbacks())
	}
	decoder.WriteBets(out, fmt.Sprintf("Decoded predictions (temp %v)", sampler.Temperature), bets)

	var result = Result{
		Manifest:    manifest,
		Predictions: predictions,
		Bets:        bets,
	}
	result.BestBet, err = decoder.BestBet(predictions[0])
	if err != nil {
		return Result{}, err
	}
	fmt.Fprintf(out, "Best bet: %v\n", decoder.FormatBet(result.BestBet))
	if hasLatest {
		result.NextBet, err = decoder.BestBet(predictions[len(predictions)-1])
		if err != nil {
			return Result{}, err
		}
		result.HasNextBet = true
		fmt.Fprintf(out, "Next draw best bet: %v\n", decoder.FormatBet(result.NextBet))
	}

	if store != nil {
		err = store.SaveBets(ctx, manifest.ID, dataset.StrategySample, bets)
		if err != nil {
			return Result{}, fmt.Errorf("save bets: %w", err)
		}
		err = store.SaveBets(ctx, manifest.ID, dataset.StrategyBest, []domain.Bet{result.BestBet})
		if err != nil {
			return Result{}, fmt.Errorf("save bets: %w", err)
		}
		log.Infow("Saved bets", "model", manifest.ID, "count", len(bets)+1)
	}
	return result, nil
}
