// Package config loads process configuration from the environment.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	err := env.Parse(target)
	if err != nil {
		return errors.Wrap(err, "unable to parse env")
	}

	return nil
}
