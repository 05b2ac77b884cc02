package config

import "errors"

var (
	errNoConfigPath = errors.New("configuration was not loaded from a file")
	errZeroFee      = errors.New("entrance fee must be positive")
)
