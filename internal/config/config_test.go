package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	var dir = t.TempDir()
	var cfg, err = Load(filepath.Join(dir, "missing.toml"), filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	var def = Default()
	if cfg != def {
		t.Errorf("expected defaults %+v, got %+v", def, cfg)
	}
	if cfg.LSTMUnits != 128 || cfg.Epochs != 100 || cfg.BatchSize != 8 || cfg.LearningRate != 0.0001 {
		t.Errorf("unexpected hyperparameters %+v", cfg)
	}
}

func TestLoadLayers(t *testing.T) {
	var dir = t.TempDir()
	var tomlPath = filepath.Join(dir, "lottoflow.toml")
	var envPath = filepath.Join(dir, ".env")
	var err = os.WriteFile(tomlPath, []byte("epochs = 7\nmodel_dir = \"/tmp/model\"\ntemperature = 0.5\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(envPath, []byte("LOTTO_BATCH_SIZE=4\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOTTO_EPOCHS", "3")
	t.Setenv("LOTTO_SAVE_BETS", "true")
	// keeps godotenv from leaking the variable into other tests
	t.Setenv("LOTTO_BATCH_SIZE", "")
	os.Unsetenv("LOTTO_BATCH_SIZE")

	cfg, err := Load(tomlPath, envPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Epochs != 3 {
		t.Errorf("environment must override file, epochs %v", cfg.Epochs)
	}
	if cfg.ModelDir != "/tmp/model" || cfg.Temperature != 0.5 {
		t.Errorf("file values not applied %+v", cfg)
	}
	if cfg.BatchSize != 4 {
		t.Errorf(".env not applied, batch size %v", cfg.BatchSize)
	}
	if !cfg.SaveBets {
		t.Error("save bets not applied")
	}
	if cfg.LSTMUnits != 128 {
		t.Errorf("default lost, lstm units %v", cfg.LSTMUnits)
	}
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("LOTTO_EPOCHS", "many")
	var _, err = Load("", "")
	if err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	var tests = []func(cfg *Config){
		func(cfg *Config) { cfg.Source = "ftp" },
		func(cfg *Config) { cfg.Epochs = 0 },
		func(cfg *Config) { cfg.BatchSize = -1 },
		func(cfg *Config) { cfg.HoldoutRatio = 1 },
		func(cfg *Config) { cfg.Temperature = 0 },
	}
	for i, change := range tests {
		var cfg = Default()
		change(&cfg)
		var err = cfg.Validate()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("case %v: expected invalid config, got %v", i, err)
		}
	}
}
