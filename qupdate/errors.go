package qupdate

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError reports a call whose space, rule or sizes the gradient
// pipeline does not handle. It is returned before any element is touched.
type ConfigError struct {
	Field string
	Got   interface{}
	Want  interface{}
	cause error
}

func (ce *ConfigError) Error() string {
	msg := fmt.Sprintf("qupdate: unsupported %s: have %v, want %v", ce.Field, ce.Got, ce.Want)
	if ce.cause != nil {
		msg += ": " + ce.cause.Error()
	}
	return msg
}

func (ce *ConfigError) Unwrap() error { return ce.cause }

func configError(field string, got, want interface{}) error {
	return &ConfigError{Field: field, Got: got, Want: want}
}

// IsConfigError reports whether err, or anything it wraps, is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
