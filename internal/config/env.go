package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Environ returns the process environment as a map for ApplyEnv.
func Environ() map[string]string {
	return env.ToMap(os.Environ())
}

// ApplyEnv overrides cfg with the variables named by the env struct tags.
// Values are trimmed and empty values are ignored.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	trimmed := make(map[string]string, len(environ))
	for k, v := range environ {
		trimmed[k] = strings.TrimSpace(v)
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: trimmed}); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	cfg.Server.AllowedOrigins = compactList(cfg.Server.AllowedOrigins)
	return nil
}

func compactList(in []string) []string {
	var out []string
	for _, part := range in {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
