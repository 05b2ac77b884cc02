package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonConfig = `{
  "bot": {"token": "file-token", "owner": 12345, "group": "EgldRaffle"},
  "seed": "file seed",
  "network": {"proxy": "https://gateway.example.com", "explorerTransaction": "https://explorer.example.com/transactions/"},
  "raffle": {
    "owner": "erd1owner",
    "entranceFee": "0.01",
    "interval": 60,
    "minimumPayout": "0.05",
    "keyHash": "0xabc",
    "subscriptionID": 4,
    "confirmations": 3,
    "callbackGasLimit": 500000,
    "numWords": 2
  }
}`

const tomlConfig = `
seed = "toml seed"

[bot]
token = "toml-token"
group = "EgldRaffle"

[raffle]
owner = "erd1owner"
entranceFee = "1"
gateUpkeepOnMinimum = true

[storage]
path = "/var/lib/raffle.db"
`

func writeConfig(t *testing.T, name string, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewConfigJSON(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, "config.json", jsonConfig))
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Bot.Token)
	assert.Equal(t, int64(12345), cfg.Bot.Owner)
	assert.Equal(t, "file seed", cfg.Seedphrase)
	assert.Equal(t, int64(60), cfg.Raffle.Interval)
	assert.Equal(t, uint16(3), cfg.Raffle.Confirmations)
	assert.Equal(t, "raffle.db", cfg.Storage.Path)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)

	rc, err := RaffleConfig(cfg)
	require.NoError(t, err)
	fee, _ := new(big.Int).SetString("10000000000000000", 10)
	minimum, _ := new(big.Int).SetString("50000000000000000", 10)
	assert.Equal(t, fee.String(), rc.EntranceFee.String())
	assert.Equal(t, minimum.String(), rc.MinimumPayout.String())
	assert.Equal(t, time.Minute, rc.Interval)
	assert.Equal(t, uint64(4), rc.SubscriptionID)
	assert.Equal(t, uint32(2), rc.NumWords)
	assert.False(t, rc.GateUpkeepOnMinimum)
}

func TestNewConfigTOMLWithDefaults(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, "config.toml", tomlConfig))
	require.NoError(t, err)

	assert.Equal(t, "toml-token", cfg.Bot.Token)
	assert.Equal(t, "toml seed", cfg.Seedphrase)
	assert.Equal(t, "/var/lib/raffle.db", cfg.Storage.Path)
	assert.Equal(t, int64(defaultInterval), cfg.Raffle.Interval)
	assert.Equal(t, uint32(defaultNumWords), cfg.Raffle.NumWords)
	assert.Equal(t, int64(defaultOraclePeriod), cfg.Oracle.Period)

	rc, err := RaffleConfig(cfg)
	require.NoError(t, err)
	assert.True(t, rc.GateUpkeepOnMinimum)
	assert.Zero(t, rc.MinimumPayout.Sign())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("RAFFLE_BOT_TOKEN", "env-token")
	t.Setenv("RAFFLE_SEED", "env seed")
	t.Setenv("RAFFLE_DB", "/tmp/env.db")
	t.Setenv("RAFFLE_API_LISTEN", ":9090")

	cfg, err := NewConfig(writeConfig(t, "config.json", jsonConfig))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Equal(t, "env seed", cfg.Seedphrase)
	assert.Equal(t, "/tmp/env.db", cfg.Storage.Path)
	assert.Equal(t, ":9090", cfg.API.Listen)
	assert.Equal(t, "EgldRaffle", cfg.Bot.Group)
}

func TestRaffleConfigRejectsBadAmounts(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, "config.json", jsonConfig))
	require.NoError(t, err)

	cfg.Raffle.EntranceFee = "0"
	_, err = RaffleConfig(cfg)
	assert.ErrorIs(t, err, errZeroFee)

	cfg.Raffle.EntranceFee = "abc"
	_, err = RaffleConfig(cfg)
	assert.Error(t, err)

	cfg.Raffle.EntranceFee = "1"
	cfg.Raffle.MinimumPayout = "-2"
	_, err = RaffleConfig(cfg)
	assert.Error(t, err)

	cfg.Raffle.MinimumPayout = "0"
	cfg.Raffle.TransferCost = "cheap"
	_, err = RaffleConfig(cfg)
	assert.Error(t, err)
}

func TestRaffleConfigTransferCost(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, "config.json", jsonConfig))
	require.NoError(t, err)

	rc, err := RaffleConfig(cfg)
	require.NoError(t, err)
	assert.Zero(t, rc.TransferCost.Sign())

	cfg.Raffle.TransferCost = "0.00005"
	rc, err = RaffleConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "50000000000000", rc.TransferCost.String())
}

func TestSaveWritesBack(t *testing.T) {
	for _, name := range []string{"config.json", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			content := jsonConfig
			if name == "config.toml" {
				content = tomlConfig
			}
			path := writeConfig(t, name, content)

			cfg, err := NewConfig(path)
			require.NoError(t, err)
			cfg.Bot.GroupID = -100123
			require.NoError(t, Save(cfg))

			again, err := NewConfig(path)
			require.NoError(t, err)
			assert.Equal(t, int64(-100123), again.Bot.GroupID)
			assert.Equal(t, cfg.Raffle.EntranceFee, again.Raffle.EntranceFee)
		})
	}
}
