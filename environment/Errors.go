package environment

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by all environments in this module. Sentinel
// errors are wrapped with fmt.Errorf("...: %w", err) at each call
// site, so callers classify failures with errors.Is and errors.As.
var (
	// ErrInvalidState indicates an operation called out of sequence,
	// such as stepping an environment before its first reset or
	// stepping a closed environment
	ErrInvalidState = errors.New("operation called out of sequence")

	// ErrSessionActive indicates an attempt to open a simulation
	// session while another session is already active. Simulation
	// sessions are a process-wide exclusive resource.
	ErrSessionActive = errors.New("simulation session already active")

	// ErrOutOfRange indicates a value outside its declared bounds,
	// such as a target position outside the reachable workspace
	ErrOutOfRange = errors.New("value outside declared bounds")
)

// ConfigError reports an invalid robot description, target
// description, or environment configuration. Configuration errors are
// fatal to the environment instance being constructed.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Configf returns a *ConfigError for operation op with a formatted
// message
func Configf(op, format string, args ...interface{}) error {
	return &ConfigError{Op: op, Err: fmt.Errorf(format, args...)}
}
