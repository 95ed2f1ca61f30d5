package trainer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChizhovVadim/lottoflow/internal/sequence"
)

var ErrNotEnoughData = errors.New("not enough draws for training")

type dataset struct {
	draws      int
	training   []sequence.Sample
	validation []sequence.Sample
	holdout    []sequence.Sample
}

// loadDataset encodes the draws and splits off the holdout tail, then the
// validation tail of the remaining samples. Nothing is shuffled here.
func loadDataset(
	ctx context.Context,
	provider IDrawProvider,
	holdoutRatio float64,
	validationSplit float64,
) (dataset, error) {
	draws, err := provider.Load(ctx)
	if err != nil {
		return dataset{}, fmt.Errorf("load draws: %w", err)
	}
	samples, err := sequence.Encode(draws)
	if err != nil {
		return dataset{}, fmt.Errorf("encode draws: %w", err)
	}
	var train, holdout = sequence.Split(samples, holdoutRatio)
	var training, validation = sequence.Split(train, validationSplit)
	if len(training) == 0 {
		return dataset{}, fmt.Errorf("%w: %v draws", ErrNotEnoughData, len(draws))
	}
	return dataset{
		draws:      len(draws),
		training:   training,
		validation: validation,
		holdout:    holdout,
	}, nil
}
