package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ChizhovVadim/lottoflow/internal/config"
	"github.com/ChizhovVadim/lottoflow/internal/logger"
	"go.uber.org/zap"
)

func main() {
	var err = run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lottoflow:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var params = NewCommandArgs(args)
	cfg, err := config.Load(
		mapPath(params.GetString("config", "lottoflow.toml")),
		mapPath(params.GetString("env", ".env")))
	if err != nil {
		return err
	}
	err = applyParams(&cfg, params)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var app = &app{
		cfg: cfg,
		log: log,
		out: os.Stdout,
	}
	var commands = NewCommandHandler()
	commands.Add("train", func() error { return app.train(ctx) })
	commands.Add("predict", func() error { return app.predict(ctx) })
	commands.Add("stats", func() error { return app.stats(ctx) })
	commands.Add("transform", func() error { return app.transform() })
	commands.Add("import", func() error { return app.importDraws(ctx) })

	log.Debugw("Config", "config", fmt.Sprintf("%+v", cfg))
	err = commands.Execute(params.CommandName())
	if err != nil {
		log.Errorw("Command failed", "command", params.CommandName(), zap.Error(err))
		return err
	}
	return nil
}

// applyParams overrides config values with command line parameters.
func applyParams(cfg *config.Config, params *CommandArgs) error {
	cfg.DataPath = mapPath(params.GetString("data", cfg.DataPath))
	cfg.CSVPath = mapPath(params.GetString("csv", cfg.CSVPath))
	cfg.Source = params.GetString("source", cfg.Source)
	cfg.ArchiveDSN = mapPath(params.GetString("archive", cfg.ArchiveDSN))
	cfg.ModelDir = mapPath(params.GetString("model", cfg.ModelDir))
	cfg.LogLevel = params.GetString("loglevel", cfg.LogLevel)

	var err error
	if cfg.LSTMUnits, err = params.GetInt("units", cfg.LSTMUnits); err != nil {
		return err
	}
	if cfg.Epochs, err = params.GetInt("epochs", cfg.Epochs); err != nil {
		return err
	}
	if cfg.BatchSize, err = params.GetInt("batch", cfg.BatchSize); err != nil {
		return err
	}
	if cfg.Threads, err = params.GetInt("threads", cfg.Threads); err != nil {
		return err
	}
	if cfg.MaxAttempts, err = params.GetInt("attempts", cfg.MaxAttempts); err != nil {
		return err
	}
	if cfg.LearningRate, err = params.GetFloat("lr", cfg.LearningRate); err != nil {
		return err
	}
	if cfg.Temperature, err = params.GetFloat("temp", cfg.Temperature); err != nil {
		return err
	}
	if cfg.Seed, err = params.GetUint64("seed", cfg.Seed); err != nil {
		return err
	}
	if cfg.SaveBets, err = params.GetBool("savebets", cfg.SaveBets); err != nil {
		return err
	}
	return cfg.Validate()
}
