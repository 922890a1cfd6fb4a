package environment

import (
	"github.com/go-playground/validator/v10"
)

// Record is one raw profile definition as loaded from a source.
// Well-known keys are "Name", "Domain" and "Key".
type Record map[string]any

// Profile is the capability a manager needs from its profile type.
type Profile interface {
	ProfileName() string
}

// Parser turns a raw record into a profile. Returning false drops the record.
type Parser[P Profile] func(Record) (P, bool)

// Environment is the stock profile: a named backend with its domain and API key.
type Environment struct {
	Name   string `json:"name" yaml:"name" validate:"required"`
	Domain string `json:"domain" yaml:"domain" validate:"required"`
	Key    string `json:"-" yaml:"-" validate:"required"`
}

func (e Environment) ProfileName() string { return e.Name }

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseEnvironment builds an Environment from a record. Records missing any
// of the three fields, or carrying non-string values, are rejected.
func ParseEnvironment(rec Record) (Environment, bool) {
	env := Environment{
		Name:   stringField(rec, "Name"),
		Domain: stringField(rec, "Domain"),
		Key:    stringField(rec, "Key"),
	}
	if err := validate.Struct(env); err != nil {
		return Environment{}, false
	}
	return env, true
}

func stringField(rec Record, key string) string {
	s, _ := rec[key].(string)
	return s
}
