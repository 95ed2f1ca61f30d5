package trainer

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/ChizhovVadim/lottoflow/internal/ml"
	"github.com/ChizhovVadim/lottoflow/internal/model"
	"github.com/ChizhovVadim/lottoflow/internal/sequence"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Trainer struct {
	log       *zap.SugaredLogger
	models    []*model.Network
	optimizer *ml.Adam
	batchSize int
	rnd       *rand.Rand
}

type metrics struct {
	loss     float64
	accuracy float64
}

type summary struct {
	bestEpoch int
	bestCost  float64
}

// NewTrainer prepares one thread copy of mainModel per worker.
// Trained weights end up in mainModel.
func NewTrainer(
	log *zap.SugaredLogger,
	mainModel *model.Network,
	concurrency int,
	batchSize int,
	learningRate float64,
	seed uint64,
) *Trainer {
	concurrency = max(1, min(concurrency, batchSize))
	var models = make([]*model.Network, concurrency)
	models[0] = mainModel
	for i := 1; i < len(models); i++ {
		models[i] = mainModel.ThreadCopy(rand.New(rand.NewPCG(seed, uint64(i))))
	}
	return &Trainer{
		log:       log,
		models:    models,
		optimizer: ml.NewAdam(learningRate),
		batchSize: max(1, batchSize),
		rnd:       rand.New(rand.NewPCG(seed, math.MaxUint32)),
	}
}

// Train fits the main model and leaves it holding the weights of the epoch
// with the lowest validation loss.
func (t *Trainer) Train(
	ctx context.Context,
	training []sequence.Sample,
	validation []sequence.Sample,
	epochs int,
) (summary, error) {
	t.log.Infow("Train started", "epochs", epochs, "batchSize", t.batchSize, "threads", len(t.models))
	defer t.log.Info("Train finished")

	var mainModel = t.models[0]
	var best = summary{bestCost: math.Inf(1)}
	var bestWeights [][]float64
	training = append([]sequence.Sample(nil), training...)

	for epoch := 1; epoch <= epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return summary{}, err
		}
		shuffle(t.rnd, training)
		var total metrics
		for i := 0; i < len(training); i += t.batchSize {
			if err := ctx.Err(); err != nil {
				return summary{}, err
			}
			var batch = training[i:min(i+t.batchSize, len(training))]
			var batchMetrics, err = t.trainBatch(ctx, batch)
			if err != nil {
				return summary{}, err
			}
			t.applyGradients(len(batch))
			total.loss += batchMetrics.loss
			total.accuracy += batchMetrics.accuracy
		}
		var penalty = mainModel.Penalty()
		var train = metrics{
			loss:     total.loss/float64(len(training)) + penalty,
			accuracy: total.accuracy / float64(len(training)),
		}

		var monitored = train.loss
		if len(validation) != 0 {
			var val, err = t.calcAverageCost(ctx, validation)
			if err != nil {
				return summary{}, err
			}
			val.loss += penalty
			monitored = val.loss
			t.log.Infow("Finished epoch", "epoch", epoch,
				"loss", train.loss, "acc", train.accuracy,
				"val_loss", val.loss, "val_acc", val.accuracy)
		} else {
			t.log.Infow("Finished epoch", "epoch", epoch,
				"loss", train.loss, "acc", train.accuracy)
		}

		if monitored < best.bestCost {
			best = summary{bestEpoch: epoch, bestCost: monitored}
			bestWeights = mainModel.Snapshot()
		}
	}

	if bestWeights != nil {
		mainModel.Restore(bestWeights)
		t.log.Infow("Restored best epoch", "epoch", best.bestEpoch, "cost", best.bestCost)
	}
	return best, nil
}

func shuffle(rnd *rand.Rand, training []sequence.Sample) {
	rnd.Shuffle(len(training), func(i, j int) {
		training[i], training[j] = training[j], training[i]
	})
}

// forEachSample hands every sample to exactly one worker model and sums the returned metrics.
func (t *Trainer) forEachSample(
	ctx context.Context,
	samples []sequence.Sample,
	f func(m *model.Network, s *sequence.Sample) (float64, float64),
) (metrics, error) {
	var index int32 = -1
	var mu = &sync.Mutex{}
	var total metrics
	g, ctx := errgroup.WithContext(ctx)
	for i := range t.models {
		var m = t.models[i]
		g.Go(func() error {
			var local metrics
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				var i = int(atomic.AddInt32(&index, 1))
				if i >= len(samples) {
					break
				}
				var loss, accuracy = f(m, &samples[i])
				local.loss += loss
				local.accuracy += accuracy
			}
			mu.Lock()
			total.loss += local.loss
			total.accuracy += local.accuracy
			mu.Unlock()
			return nil
		})
	}
	var err = g.Wait()
	return total, err
}

func (t *Trainer) trainBatch(ctx context.Context, samples []sequence.Sample) (metrics, error) {
	return t.forEachSample(ctx, samples, func(m *model.Network, s *sequence.Sample) (float64, float64) {
		return m.Train(s.Input, s.Target)
	})
}

func (t *Trainer) applyGradients(batchSize int) {
	var mainModel = t.models[0]
	for i := 1; i < len(t.models); i++ {
		t.models[i].AddGradients(mainModel)
	}
	mainModel.ApplyGradients(t.optimizer, batchSize)
}

func (t *Trainer) calcAverageCost(ctx context.Context, samples []sequence.Sample) (metrics, error) {
	var total, err = t.forEachSample(ctx, samples, func(m *model.Network, s *sequence.Sample) (float64, float64) {
		return m.CalcCost(s.Input, s.Target)
	})
	if err != nil {
		return metrics{}, err
	}
	return metrics{
		loss:     total.loss / float64(len(samples)),
		accuracy: total.accuracy / float64(len(samples)),
	}, nil
}
