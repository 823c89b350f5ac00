package config

import "errors"

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid config file")
	ErrSecretNotFound = errors.New("no secret configured")
)

// EntryError ties a build failure to the config entry that caused it.
type EntryError struct {
	Name string
	Err  error
}

func (e *EntryError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// EntryErrors flattens an error returned by Build into its per-entry parts.
func EntryErrors(err error) []*EntryError {
	var out []*EntryError
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if ee, ok := err.(*EntryError); ok {
			out = append(out, ee)
			return
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
		}
	}
	walk(err)
	return out
}
