package config

import (
	"github.com/go-logr/logr"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"geometry-simplifier/simplifier"
)

type Config struct {
	Addr            string  `validate:"required,hostname_port"`
	Threshold       float64 `validate:"gte=0,lte=1"`
	Precision       int     `validate:"gte=0,lte=15"`
	LegacyThreshold bool
	Verbosity       int `validate:"gte=0,lte=10"`

	// optional params
	LoadPattern string
	OutDir      string
}

func NewDefaultConfig() Config {
	return Config{
		Addr:      "127.0.0.1:8080",
		Threshold: simplifier.DefaultThreshold,
		Precision: simplifier.DefaultPrecision,
	}
}

func (cc Config) WithAddr(addr string) Config {
	cc.Addr = addr
	return cc
}

func (cc Config) WithThreshold(threshold float64) Config {
	cc.Threshold = threshold
	return cc
}

func (cc Config) WithPrecision(places int) Config {
	cc.Precision = places
	return cc
}

func (cc Config) WithLegacyBaseThreshold(legacy bool) Config {
	cc.LegacyThreshold = legacy
	return cc
}

func (cc Config) WithVerbosity(v int) Config {
	cc.Verbosity = v
	return cc
}

func (cc Config) WithLoadPattern(pattern string) Config {
	cc.LoadPattern = pattern
	return cc
}

func (cc Config) WithOutDir(dir string) Config {
	cc.OutDir = dir
	return cc
}

// Validate checks the field constraints declared in the struct tags.
func (cc Config) Validate() error {
	if err := validator.New().Struct(cc); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// SimplifierOptions returns the simplifier settings described by cc.
func (cc Config) SimplifierOptions(logger logr.Logger) []simplifier.Option {
	return []simplifier.Option{
		simplifier.WithThreshold(cc.Threshold),
		simplifier.WithPrecision(cc.Precision),
		simplifier.WithLegacyBaseThreshold(cc.LegacyThreshold),
		simplifier.WithLogger(logger),
	}
}
