package app

import "errors"

// Config holds everything an App instance needs to run.
type Config struct {
	// PipelinePath points at a .hcl pipeline file or a directory of them.
	PipelinePath string
	// InputsPath optionally points at a YAML file with external inputs.
	InputsPath string

	LogFormat string
	LogLevel  string
	Workers   int
}

// NewConfig validates the configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
