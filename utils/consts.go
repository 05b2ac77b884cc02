package utils

import "errors"

const (
	DefaultConfigPath = "config.json"
	DefaultDBPath     = "raffle.db"

	AutoNonce = 4000000000

	EgldDecimals = 18

	TransferGasLimit = 50000
	EnterFee         = 0.00005
)

var (
	errInvalidAmount = errors.New("invalid amount")
)
