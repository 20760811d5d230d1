// Package config loads prechecker settings. Values are layered: defaults,
// then the YAML file, then PRECHECKER_* environment variables (a .env file
// is read first). Command-line flags are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = ".prechecker.yaml"

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "PRECHECKER_"

// DotEnv is the dotenv file loaded before the environment is parsed.
var DotEnv = ".env"

// Config holds the tunable settings of a run.
type Config struct {
	Encoding            string  `yaml:"encoding" env:"ENCODING"`
	Delimiter           string  `yaml:"delimiter" env:"DELIMITER"`
	Output              string  `yaml:"output" env:"OUTPUT"`
	MaxDisplay          int     `yaml:"max_display" env:"MAX_DISPLAY"`
	Workers             int     `yaml:"workers" env:"WORKERS"`
	BatchSize           int     `yaml:"batch_size" env:"BATCH_SIZE"`
	ExemptAutoGenerated bool    `yaml:"exempt_auto_generated" env:"EXEMPT_AUTO_GENERATED"`
	LogLevel            string  `yaml:"log_level" env:"LOG_LEVEL"`
	Sheet               string  `yaml:"sheet" env:"SHEET"`
	Metrics             Metrics `yaml:"metrics" envPrefix:"METRICS_"`
}

// Metrics configures the Pushgateway backend. An empty URL disables it.
type Metrics struct {
	PushgatewayURL string `yaml:"pushgateway_url" env:"PUSHGATEWAY_URL"`
	Job            string `yaml:"job" env:"JOB"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Encoding:   "utf-8",
		Delimiter:  ",",
		Output:     "validation_errors.csv",
		MaxDisplay: 10,
		Workers:    1,
		BatchSize:  1000,
		LogLevel:   "info",
		Metrics:    Metrics{Job: "prechecker"},
	}
}

// Load builds the configuration. An empty path reads DefaultFile if it
// exists; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeYAML(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	// the dotenv file is optional and never overrides the real environment
	_ = godotenv.Load(DotEnv)

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("config environment: %w", err)
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// DelimiterRune returns the field separator. "tab" and `\t` name a tab.
func (c Config) DelimiterRune() rune {
	switch d := c.Delimiter; strings.ToLower(d) {
	case "":
		return ','
	case "tab", `\t`:
		return '\t'
	default:
		return []rune(d)[0]
	}
}
