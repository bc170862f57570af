// Package config provides fail-open environment loaders and the validators
// shared by every configuration in the module.
//
// A value that is missing falls back to its default silently. A value that is
// present but unparsable or invalid also falls back, with a warning that the
// caller is expected to log and count.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Result is the outcome of loading one environment variable.
type Result[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// LoadEnvString returns the variable, or defaultValue when it is unset or empty.
func LoadEnvString(envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// LoadFirstEnv returns the first non-empty variable among envKeys.
func LoadFirstEnv(defaultValue string, envKeys ...string) string {
	for _, key := range envKeys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

// LoadEnvWithFallback loads a string and validates it.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) Result[string] {
	return load(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validator)
}

// LoadEnvDuration loads a Go duration string such as "30s" or "1h30m".
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) Result[time.Duration] {
	return load(envKey, defaultValue, time.ParseDuration, validator)
}

// LoadEnvInt loads a base 10 integer.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) Result[int] {
	return load(envKey, defaultValue, func(s string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return v, nil
	}, validator)
}

// LoadEnvFloat loads a floating point number.
func LoadEnvFloat(envKey string, defaultValue float64, validator func(float64) error) Result[float64] {
	return load(envKey, defaultValue, func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number format")
		}
		return v, nil
	}, validator)
}

// LoadEnvBool loads a boolean accepted by strconv.ParseBool.
func LoadEnvBool(envKey string, defaultValue bool) Result[bool] {
	return load(envKey, defaultValue, func(s string) (bool, error) {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("invalid boolean format, expected 'true' or 'false'")
		}
		return v, nil
	}, nil)
}

func load[T any](envKey string, defaultValue T, parse func(string) (T, error), validator func(T) error) Result[T] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return Result[T]{Value: defaultValue}
	}

	value, err := parse(raw)
	if err == nil && validator != nil {
		err = validator(value)
	}
	if err != nil {
		return Result[T]{
			Value:           defaultValue,
			Warning:         fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, err, defaultValue),
			FallbackApplied: true,
		}
	}
	return Result[T]{Value: value}
}

// Loader applies Results to a configuration, logging and counting every
// fallback. The zero value is not usable; use NewLoader.
type Loader struct {
	logger   *slog.Logger
	metrics  *ConfigMetrics
	fallback bool
}

// NewLoader creates a Loader. metrics may be nil.
func NewLoader(logger *slog.Logger, metrics *ConfigMetrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, metrics: metrics}
}

// Apply returns r.Value and records the fallback, if any, under field.
func Apply[T any](l *Loader, field string, r Result[T]) T {
	if r.FallbackApplied {
		l.fallback = true
		if l.metrics != nil {
			l.metrics.RecordValidationError(field)
			l.metrics.RecordFallback(field, "default")
		}
		l.logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", r.Warning))
	}
	return r.Value
}

// FallbackApplied reports whether any applied Result fell back.
func (l *Loader) FallbackApplied() bool {
	return l.fallback
}

// Finish updates the fallback gauge and the load timestamp.
func (l *Loader) Finish() {
	if l.metrics == nil {
		return
	}
	l.metrics.SetFallbackActive(l.fallback)
	l.metrics.RecordLoadTimestamp()
}
