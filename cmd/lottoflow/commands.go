package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ChizhovVadim/lottoflow/internal/config"
	"github.com/ChizhovVadim/lottoflow/internal/dataset"
	"github.com/ChizhovVadim/lottoflow/internal/predictor"
	"github.com/ChizhovVadim/lottoflow/internal/trainer"
	"go.uber.org/zap"
)

type app struct {
	cfg config.Config
	log *zap.SugaredLogger
	out io.Writer
}

type drawSource interface {
	trainer.IDrawProvider
	Close() error
}

type jsonSource struct {
	*dataset.JSONProvider
}

func (jsonSource) Close() error { return nil }

func (a *app) openSource() (drawSource, error) {
	if a.cfg.Source == config.SourceArchive {
		a.log.Infow("Reading draws from archive", "dsn", a.cfg.ArchiveDSN)
		return dataset.OpenArchive(a.cfg.ArchiveDSN)
	}
	a.log.Infow("Reading draws", "path", a.cfg.DataPath)
	return jsonSource{&dataset.JSONProvider{FilePath: a.cfg.DataPath}}, nil
}

func (a *app) train(ctx context.Context) error {
	source, err := a.openSource()
	if err != nil {
		return err
	}
	defer source.Close()

	_, err = trainer.Run(ctx, a.log, source, trainer.Config{
		LSTMUnits:       a.cfg.LSTMUnits,
		Epochs:          a.cfg.Epochs,
		BatchSize:       a.cfg.BatchSize,
		LearningRate:    a.cfg.LearningRate,
		HoldoutRatio:    a.cfg.HoldoutRatio,
		ValidationSplit: a.cfg.ValidationRate,
		Threads:         a.cfg.Threads,
		Seed:            a.cfg.Seed,
		ModelDir:        a.cfg.ModelDir,
	}, a.out)
	return err
}

func (a *app) predict(ctx context.Context) error {
	source, err := a.openSource()
	if err != nil {
		return err
	}
	defer source.Close()

	var store predictor.IBetStore
	if a.cfg.SaveBets {
		archive, err := dataset.OpenArchive(a.cfg.ArchiveDSN)
		if err != nil {
			return err
		}
		defer archive.Close()
		store = archive
	}

	_, err = predictor.Run(ctx, a.log, source, store, predictor.Config{
		ModelDir:     a.cfg.ModelDir,
		HoldoutRatio: a.cfg.HoldoutRatio,
		Temperature:  a.cfg.Temperature,
		MaxAttempts:  a.cfg.MaxAttempts,
		Threads:      a.cfg.Threads,
		Seed:         a.cfg.Seed,
	}, a.out)
	return err
}

func (a *app) stats(ctx context.Context) error {
	source, err := a.openSource()
	if err != nil {
		return err
	}
	defer source.Close()

	draws, err := source.Load(ctx)
	if err != nil {
		return err
	}
	a.log.Infow("Loaded dataset", "draws", len(draws))
	dataset.PrintStats(a.out, dataset.Analyze(draws))
	return nil
}

func (a *app) transform() error {
	rows, err := dataset.TransformFile(a.cfg.CSVPath, a.cfg.DataPath)
	if err != nil {
		return err
	}
	a.log.Infow("Transformed", "input", a.cfg.CSVPath, "output", a.cfg.DataPath, "rows", len(rows))
	fmt.Fprintf(a.out, "Wrote %v rows to %v\n", len(rows), a.cfg.DataPath)
	return nil
}

func (a *app) importDraws(ctx context.Context) error {
	draws, err := dataset.LoadDraws(a.cfg.DataPath)
	if err != nil {
		return err
	}
	archive, err := dataset.OpenArchive(a.cfg.ArchiveDSN)
	if err != nil {
		return err
	}
	defer archive.Close()

	err = archive.ImportDraws(ctx, draws)
	if err != nil {
		return err
	}
	a.log.Infow("Imported draws", "draws", len(draws), "archive", a.cfg.ArchiveDSN)
	return nil
}
