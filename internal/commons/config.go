package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"tradeflow/internal/config"
)

// LoadConfig reads the YAML file at path over the defaults, overlays the
// environment and validates the result. An empty path skips the file.
func LoadConfig(path string) (*config.Config, error) {
	cfg := config.Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
