package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file name.
const FileName = "caseflow.yaml"

// Default returns the configuration used when no caseflow.yaml exists.
func Default() *Config {
	return &Config{
		Root:     ".",
		PlanName: "plan.md",
		Interpreters: map[string][]string{
			".py": {"python3"},
			".sh": {"sh"},
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    ".caseflow/history.db",
		},
	}
}

// Load reads and validates the configuration file at path. A missing file
// yields the defaults; a malformed or invalid file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
