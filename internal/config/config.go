package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	SourceJSON    = "json"
	SourceArchive = "archive"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds every path and hyperparameter of the pipeline.
type Config struct {
	DataPath    string `toml:"data_path"`
	CSVPath     string `toml:"csv_path"`
	Source      string `toml:"source"`
	ArchiveDSN  string `toml:"archive_dsn"`
	ModelDir    string `toml:"model_dir"`
	SaveBets    bool   `toml:"save_bets"`
	LogLevel    string `toml:"log_level"`
	LogEncoding string `toml:"log_encoding"`

	LSTMUnits      int     `toml:"lstm_units"`
	Epochs         int     `toml:"epochs"`
	BatchSize      int     `toml:"batch_size"`
	LearningRate   float64 `toml:"learning_rate"`
	HoldoutRatio   float64 `toml:"holdout_ratio"`
	ValidationRate float64 `toml:"validation_split"`
	Temperature    float64 `toml:"temperature"`
	MaxAttempts    int     `toml:"max_attempts"`
	Threads        int     `toml:"threads"`
	Seed           uint64  `toml:"seed"`
}

func Default() Config {
	return Config{
		DataPath:       "./data/lotto.json",
		CSVPath:        "./data/lotto.csv",
		Source:         SourceJSON,
		ArchiveDSN:     "./data/lotto.db",
		ModelDir:       "./lotto_model",
		LogLevel:       "info",
		LogEncoding:    "console",
		LSTMUnits:      128,
		Epochs:         100,
		BatchSize:      8,
		LearningRate:   0.0001,
		HoldoutRatio:   0.2,
		ValidationRate: 0.2,
		Temperature:    0.99,
		MaxAttempts:    1000,
		Threads:        runtime.NumCPU(),
		Seed:           1,
	}
}

// Load applies, in order, defaults, the TOML file and the environment.
// Variables from envPath do not override variables already set.
// Missing files are skipped.
func Load(tomlPath, envPath string) (Config, error) {
	var cfg = Default()
	if tomlPath != "" {
		data, err := os.ReadFile(tomlPath)
		if err == nil {
			err = toml.Unmarshal(data, &cfg)
			if err != nil {
				return Config{}, fmt.Errorf("parse %v: %w", tomlPath, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	if envPath != "" {
		var err = godotenv.Load(envPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %v: %w", envPath, err)
		}
	}
	var err = cfg.applyEnv(os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

type envVar struct {
	name string
	set  func(cfg *Config, value string) error
}

func stringVar(name string, field func(cfg *Config) *string) envVar {
	return envVar{name, func(cfg *Config, value string) error {
		*field(cfg) = value
		return nil
	}}
}

func intVar(name string, field func(cfg *Config) *int) envVar {
	return envVar{name, func(cfg *Config, value string) error {
		var n, err = strconv.Atoi(value)
		if err != nil {
			return err
		}
		*field(cfg) = n
		return nil
	}}
}

func floatVar(name string, field func(cfg *Config) *float64) envVar {
	return envVar{name, func(cfg *Config, value string) error {
		var f, err = strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		*field(cfg) = f
		return nil
	}}
}

var envVars = []envVar{
	stringVar("LOTTO_DATA_PATH", func(c *Config) *string { return &c.DataPath }),
	stringVar("LOTTO_CSV_PATH", func(c *Config) *string { return &c.CSVPath }),
	stringVar("LOTTO_SOURCE", func(c *Config) *string { return &c.Source }),
	stringVar("LOTTO_ARCHIVE_DSN", func(c *Config) *string { return &c.ArchiveDSN }),
	stringVar("LOTTO_MODEL_DIR", func(c *Config) *string { return &c.ModelDir }),
	stringVar("LOTTO_LOG_LEVEL", func(c *Config) *string { return &c.LogLevel }),
	stringVar("LOTTO_LOG_ENCODING", func(c *Config) *string { return &c.LogEncoding }),
	intVar("LOTTO_LSTM_UNITS", func(c *Config) *int { return &c.LSTMUnits }),
	intVar("LOTTO_EPOCHS", func(c *Config) *int { return &c.Epochs }),
	intVar("LOTTO_BATCH_SIZE", func(c *Config) *int { return &c.BatchSize }),
	intVar("LOTTO_MAX_ATTEMPTS", func(c *Config) *int { return &c.MaxAttempts }),
	intVar("LOTTO_THREADS", func(c *Config) *int { return &c.Threads }),
	floatVar("LOTTO_LEARNING_RATE", func(c *Config) *float64 { return &c.LearningRate }),
	floatVar("LOTTO_HOLDOUT_RATIO", func(c *Config) *float64 { return &c.HoldoutRatio }),
	floatVar("LOTTO_VALIDATION_SPLIT", func(c *Config) *float64 { return &c.ValidationRate }),
	floatVar("LOTTO_TEMPERATURE", func(c *Config) *float64 { return &c.Temperature }),
	{"LOTTO_SAVE_BETS", func(c *Config, value string) error {
		var b, err = strconv.ParseBool(value)
		if err != nil {
			return err
		}
		c.SaveBets = b
		return nil
	}},
	{"LOTTO_SEED", func(c *Config, value string) error {
		var n, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		c.Seed = n
		return nil
	}},
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, v := range envVars {
		var value, found = lookup(v.name)
		if !found || value == "" {
			continue
		}
		var err = v.set(cfg, value)
		if err != nil {
			return fmt.Errorf("%v: %w", v.name, err)
		}
	}
	return nil
}

func (cfg *Config) Validate() error {
	switch {
	case cfg.Source != SourceJSON && cfg.Source != SourceArchive:
		return fmt.Errorf("%w: source %q", ErrInvalidConfig, cfg.Source)
	case cfg.LSTMUnits <= 0:
		return fmt.Errorf("%w: lstm units %v", ErrInvalidConfig, cfg.LSTMUnits)
	case cfg.Epochs <= 0:
		return fmt.Errorf("%w: epochs %v", ErrInvalidConfig, cfg.Epochs)
	case cfg.BatchSize <= 0:
		return fmt.Errorf("%w: batch size %v", ErrInvalidConfig, cfg.BatchSize)
	case cfg.LearningRate <= 0:
		return fmt.Errorf("%w: learning rate %v", ErrInvalidConfig, cfg.LearningRate)
	case cfg.HoldoutRatio <= 0 || cfg.HoldoutRatio >= 1:
		return fmt.Errorf("%w: holdout ratio %v", ErrInvalidConfig, cfg.HoldoutRatio)
	case cfg.ValidationRate < 0 || cfg.ValidationRate >= 1:
		return fmt.Errorf("%w: validation split %v", ErrInvalidConfig, cfg.ValidationRate)
	case cfg.Temperature <= 0:
		return fmt.Errorf("%w: temperature %v", ErrInvalidConfig, cfg.Temperature)
	case cfg.MaxAttempts <= 0:
		return fmt.Errorf("%w: max attempts %v", ErrInvalidConfig, cfg.MaxAttempts)
	}
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}
	return nil
}
