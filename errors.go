package loadlimiter

import (
	"fmt"
	"time"
)

// ConfigError reports a constructor-time violation of a Config
// constraint. New never produces a partial Limiter when it returns a
// non-nil ConfigError.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf(`loadlimiter: invalid config: %s: %s`, e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// LoadLimitExceededError is returned by Wait when a submit is rejected
// without a positive retry estimate (RetryIn is nil or not positive).
type LoadLimitExceededError struct {
	RetryIn *time.Duration
}

func (e *LoadLimitExceededError) Error() string {
	if e.RetryIn == nil {
		return `loadlimiter: load limit exceeded`
	}
	return fmt.Sprintf(`loadlimiter: load limit exceeded (capacity available in %s)`, e.RetryIn.String())
}
