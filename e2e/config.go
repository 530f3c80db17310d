package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// API_BASE_URL points at a running instance, e.g. http://localhost:5000.
	// Scenarios are skipped when it is empty.
	BaseURL string `envconfig:"API_BASE_URL"`
	// E2E_DEBUG_BODIES dumps full request/response bodies in the test log
	DebugBodies bool `envconfig:"E2E_DEBUG_BODIES" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
