// Package config loads server settings from the environment.
package config

import "github.com/kelseyhightower/envconfig"

// Config holds all server settings. Values come from MEDAGENT_-prefixed
// environment variables.
type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Provider selects the generator: openai, anthropic or fallback.
	Provider       string `envconfig:"MODEL_PROVIDER" default:"fallback"`
	OpenAIModel    string `envconfig:"OPENAI_MODEL"`
	AnthropicModel string `envconfig:"ANTHROPIC_MODEL"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("medagent", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
