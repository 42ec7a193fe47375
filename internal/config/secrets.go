package config

import (
	"fmt"
	"os"
	"strings"
)

// EnvPrefix marks a Secret that is read from the environment.
const EnvPrefix = "env:"

// Secret is a credential given either literally or as "env:NAME". The
// environment is read when the YAML is decoded, so .env files must be loaded
// before the config.
type Secret string

// UnmarshalYAML resolves "env:NAME" references.
func (s *Secret) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}

	value, err := resolveSecret(raw)
	if err != nil {
		return fmt.Errorf("resolve secret: %w", err)
	}

	*s = Secret(value)
	return nil
}

// String hides the value so secrets don't end up in logs.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "********"
}

// Value returns the plain credential.
func (s Secret) Value() string {
	return string(s)
}

func resolveSecret(raw string) (string, error) {
	name, ok := strings.CutPrefix(raw, EnvPrefix)
	if !ok {
		return raw, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty environment variable name")
	}

	// Unset variables resolve to "" so optional credentials stay optional.
	return os.Getenv(name), nil
}
