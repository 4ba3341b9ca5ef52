package env

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvValue holds process level settings. Values come from the environment,
// optionally seeded from a .env file in the working directory.
type EnvValue struct {
	BotToken        string `env:"BOT_TOKEN"`
	CfgFile         string `env:"CFG_FILE" envDefault:"cfg.yaml"`
	LogFile         string `env:"LOG_FILE" envDefault:"log.txt"`
	DebugMode       bool   `env:"DEBUG"`
	Silent          bool   `env:"SILENT"`
	ServerPort      int    `env:"SERVER_PORT" envDefault:"8080"`
	DBPath          string `env:"DB_PATH" envDefault:"spin-the-wheel.db"`
	SendDMs         *bool  `env:"SEND_DMS"`
	SchedulerLimit  int    `env:"SCHEDULER_LIMIT" envDefault:"10000"`
	EffectQueueSize int    `env:"EFFECT_QUEUE_SIZE" envDefault:"256"`
}

var Value EnvValue

// LoadEnv reads .env (if present) and parses the environment into Value.
func LoadEnv() error {
	return LoadEnvFiles(".env")
}

// LoadEnvFiles is LoadEnv with explicit dotenv files. Missing files are ignored.
func LoadEnvFiles(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	var v EnvValue
	if err := env.Parse(&v); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	Value = v
	return nil
}
