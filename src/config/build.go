package config

import (
	"errors"

	otpgen "github.com/aaravmaloo/otpgen/src"
)

// NewEngine decodes e.Secret and builds an engine with e's parameters.
func (e Entry) NewEngine() (*otpgen.Engine, error) {
	key, err := otpgen.DecodeSecret(e.Secret)
	if err != nil {
		return nil, err
	}
	alg, err := otpgen.ParseAlgorithm(e.Algorithm)
	if err != nil {
		return nil, err
	}

	opts := []otpgen.Option{otpgen.WithAlgorithm(alg)}
	if e.Period != 0 {
		opts = append(opts, otpgen.WithStep(e.Period))
	}
	if e.Digits != 0 {
		opts = append(opts, otpgen.WithDigits(e.Digits))
	}
	return otpgen.NewEngine(key, opts...)
}

// Build registers an engine for every entry of f. Entries that fail are
// left out of the registry and reported in the returned error, one
// *EntryError per entry joined with errors.Join.
func Build(f *File, opts ...otpgen.RegistryOption) (*otpgen.Registry, error) {
	reg := otpgen.NewRegistry(opts...)

	var errs []error
	for _, e := range f.Entries {
		engine, err := e.NewEngine()
		if err != nil {
			errs = append(errs, &EntryError{Name: e.Name, Err: err})
			continue
		}
		if err := reg.Register(e.Name, engine); err != nil {
			errs = append(errs, &EntryError{Name: e.Name, Err: err})
		}
	}
	return reg, errors.Join(errs...)
}
