package environment

import (
	"errors"
	"net/http"
)

// ErrNoEnvironments is returned by New when the source yields no valid profile.
var ErrNoEnvironments = errors.New("no valid environments loaded")

type unknownEnvironmentError struct{ name string }

func (e unknownEnvironmentError) Error() string { return "unknown environment: " + e.name }

// StatusCode lets HTTP layers report an unknown name as not found.
func (e unknownEnvironmentError) StatusCode() int { return http.StatusNotFound }

// ErrUnknownEnvironment returns an error for a name that matches no loaded profile.
func ErrUnknownEnvironment(name string) error { return unknownEnvironmentError{name: name} }

// IsUnknownEnvironment reports whether err indicates a name that matches no profile.
func IsUnknownEnvironment(err error) bool {
	var target unknownEnvironmentError
	return errors.As(err, &target)
}
