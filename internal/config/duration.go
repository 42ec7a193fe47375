// Package config holds YAML value types shared by the command configs.
package config

import (
	"fmt"
	"time"
)

// Duration decodes strings such as "30s" or "1m30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	err := unmarshal(&s)
	if err != nil {
		return err
	}

	if s == "" {
		*d = 0
		return nil
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("couldn't parse duration: %w", err)
	}
	if duration < 0 {
		return fmt.Errorf("duration %s must not be negative", s)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
