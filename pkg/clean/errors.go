package clean

import "fmt"

// ConfigError is a resolve-time failure: an unknown step, a missing or
// malformed parameter, or a malformed cleaning list. It never touches data.
type ConfigError struct {
	Step string
	Msg  string
}

func (e *ConfigError) Error() string {
	if e.Step == "" {
		return "cleaning config: " + e.Msg
	}
	return fmt.Sprintf("cleaning config: step %s: %s", e.Step, e.Msg)
}

// TransformError is an apply-time failure: a step's own invariant was
// violated while transforming data.
type TransformError struct {
	Step string
	Msg  string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("cleaning step %s: %s", e.Step, e.Msg)
}

func configErrorf(step, format string, args ...any) error {
	return &ConfigError{Step: step, Msg: fmt.Sprintf(format, args...)}
}

func transformErrorf(step, format string, args ...any) error {
	return &TransformError{Step: step, Msg: fmt.Sprintf(format, args...)}
}
