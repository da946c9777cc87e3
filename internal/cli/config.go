package cli

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config supplies defaults for the CLI commands. Flags win over config values.
type Config struct {
	// Active is the node made active before printing.
	Active string `mapstructure:"active"`
	// Expand lists nodes to force open.
	Expand []string `mapstructure:"expand"`
	// NoColor disables terminal styling.
	NoColor bool `mapstructure:"no_color"`

	// Addr is the serve listen address, e.g. ":8080".
	Addr string `mapstructure:"addr"`
	// Redis is the address of a Redis used for view state persistence. Empty
	// keeps states in memory.
	Redis string `mapstructure:"redis"`
	// Metrics exposes Prometheus metrics on /metrics when serving.
	Metrics bool `mapstructure:"metrics"`

	// LoadingTransitionMs debounces loading indicators, in milliseconds.
	LoadingTransitionMs int `mapstructure:"loading_transition_ms"`
}

// LoadConfig reads a YAML config file. A missing file at the default path is
// not an error; the zero Config applies.
func LoadConfig(path string, required bool) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	// Decode through a generic map so unknown keys can be rejected instead of
	// silently dropped.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
