package main

import (
	"errors"
	"testing"

	"github.com/ChizhovVadim/lottoflow/internal/config"
)

func TestCommandArgs(t *testing.T) {
	var args = NewCommandArgs([]string{"lottoflow", "-data", "draws.json", "train", "-epochs", "5", "--temp", "0.5"})
	if args.CommandName() != "train" {
		t.Errorf("command %q", args.CommandName())
	}
	if v := args.GetString("data", ""); v != "draws.json" {
		t.Errorf("data %q", v)
	}
	if v, err := args.GetInt("epochs", 100); err != nil || v != 5 {
		t.Errorf("epochs %v %v", v, err)
	}
	if v, err := args.GetFloat("temp", 0.99); err != nil || v != 0.5 {
		t.Errorf("temp %v %v", v, err)
	}
	if v, err := args.GetInt("batch", 8); err != nil || v != 8 {
		t.Errorf("batch default %v %v", v, err)
	}
}

func TestApplyParams(t *testing.T) {
	var cfg = config.Default()
	var err = applyParams(&cfg, NewCommandArgs([]string{"lottoflow", "predict", "-model", "/tmp/m", "-savebets", "true", "-seed", "42"}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ModelDir != "/tmp/m" || !cfg.SaveBets || cfg.Seed != 42 {
		t.Errorf("parameters not applied %+v", cfg)
	}

	cfg = config.Default()
	err = applyParams(&cfg, NewCommandArgs([]string{"lottoflow", "train", "-epochs", "ten"}))
	if err == nil {
		t.Error("expected parse error")
	}

	cfg = config.Default()
	err = applyParams(&cfg, NewCommandArgs([]string{"lottoflow", "train", "-batch", "0"}))
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}

func TestCommandHandler(t *testing.T) {
	var called bool
	var ch = NewCommandHandler()
	ch.Add("stats", func() error {
		called = true
		return nil
	})
	if err := ch.Execute("stats"); err != nil || !called {
		t.Errorf("stats not executed: %v", err)
	}
	if err := ch.Execute("unknown"); err == nil {
		t.Error("expected error for unknown command")
	}
}
