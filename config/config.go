package config

import (
	"bytes"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/utils"
	"github.com/caarlos0/env/v11"
	"golang.org/x/xerrors"
)

var (
	cfgPath string
)

const (
	defaultInterval     = 30
	defaultNumWords     = 1
	defaultOraclePeriod = 1
	defaultLogLevel     = "*:INFO"
)

// NewConfig - reads the application configuration from the provided path
// and returns an AppConfig struct or an error if something goes wrong.
// Files ending in .toml are decoded as TOML, anything else as JSON.
// Environment variables override the file.
func NewConfig(configPath string) (*data.AppConfig, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &data.AppConfig{}
	if isToml(configPath) {
		_, err = toml.Decode(string(raw), cfg)
	} else {
		err = json.Unmarshal(raw, cfg)
	}
	if err != nil {
		return nil, xerrors.Errorf("decode %s: %w", configPath, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, xerrors.Errorf("environment: %w", err)
	}
	applyDefaults(cfg)

	cfgPath = configPath

	return cfg, nil
}

func Save(cfg *data.AppConfig) error {
	if cfgPath == "" {
		return errNoConfigPath
	}

	var raw []byte
	if isToml(cfgPath) {
		buf := &bytes.Buffer{}
		if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
			return err
		}
		raw = buf.Bytes()
	} else {
		var err error
		raw, err = json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
	}

	return os.WriteFile(cfgPath, raw, 0644)
}

// RaffleConfig - converts the raffle section of the file into the engine's
// configuration. Amounts are given in eGLD.
func RaffleConfig(cfg *data.AppConfig) (data.RaffleConfig, error) {
	fee, err := utils.ParseAmount(cfg.Raffle.EntranceFee, utils.EgldDecimals)
	if err != nil {
		return data.RaffleConfig{}, xerrors.Errorf("entrance fee %q: %w", cfg.Raffle.EntranceFee, err)
	}
	if fee.Sign() == 0 {
		return data.RaffleConfig{}, xerrors.Errorf("entrance fee %q: %w", cfg.Raffle.EntranceFee, errZeroFee)
	}

	minimum, err := utils.ParseAmount(cfg.Raffle.MinimumPayout, utils.EgldDecimals)
	if err != nil {
		return data.RaffleConfig{}, xerrors.Errorf("minimum payout %q: %w", cfg.Raffle.MinimumPayout, err)
	}

	cost := big.NewInt(0)
	if cfg.Raffle.TransferCost != "" {
		cost, err = utils.ParseAmount(cfg.Raffle.TransferCost, utils.EgldDecimals)
		if err != nil {
			return data.RaffleConfig{}, xerrors.Errorf("transfer cost %q: %w", cfg.Raffle.TransferCost, err)
		}
	}

	return data.RaffleConfig{
		EntranceFee:         fee,
		Interval:            time.Duration(cfg.Raffle.Interval) * time.Second,
		MinimumPayout:       minimum,
		GateUpkeepOnMinimum: cfg.Raffle.GateUpkeepOnMinimum,
		TransferCost:        cost,
		KeyHash:             cfg.Raffle.KeyHash,
		SubscriptionID:      cfg.Raffle.SubscriptionID,
		Confirmations:       cfg.Raffle.Confirmations,
		CallbackGasLimit:    cfg.Raffle.CallbackGasLimit,
		NumWords:            cfg.Raffle.NumWords,
	}, nil
}

func applyDefaults(cfg *data.AppConfig) {
	if cfg.Raffle.Interval == 0 {
		cfg.Raffle.Interval = defaultInterval
	}
	if cfg.Raffle.NumWords == 0 {
		cfg.Raffle.NumWords = defaultNumWords
	}
	if cfg.Raffle.MinimumPayout == "" {
		cfg.Raffle.MinimumPayout = "0"
	}
	if cfg.Oracle.Period == 0 {
		cfg.Oracle.Period = defaultOraclePeriod
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = utils.DefaultDBPath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
}

func isToml(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
