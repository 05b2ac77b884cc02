package data

import (
	"math/big"
	"time"
)

// RaffleState is the state of the round state machine
type RaffleState int

const (
	StateOpen RaffleState = iota
	StateCalculating
)

var raffleStates = []string{"Open", "Calculating"}

func (s RaffleState) String() string {
	if s < 0 || int(s) >= len(raffleStates) {
		return "Unknown"
	}

	return raffleStates[s]
}

// RaffleConfig holds the parameters fixed when the raffle is created
type RaffleConfig struct {
	EntranceFee   *big.Int
	Interval      time.Duration
	MinimumPayout *big.Int

	// GateUpkeepOnMinimum keeps a round open until its pool reaches MinimumPayout
	GateUpkeepOnMinimum bool

	// TransferCost is the network fee paid by custody for one outbound
	// transfer. It may not exceed the skim of one entry.
	TransferCost *big.Int

	KeyHash          string
	SubscriptionID   uint64
	Confirmations    uint16
	CallbackGasLimit uint32
	NumWords         uint32
}

// WinnerRecord is the outcome of a round resolved with a winner
type WinnerRecord struct {
	Winner string   `json:"winner"`
	Amount *big.Int `json:"amount"`
	Paid   bool     `json:"paid"`
}

// Round is a snapshot of one round from the registry
type Round struct {
	ID       uint64        `json:"id"`
	Entrants []string      `json:"entrants"`
	Failed   bool          `json:"failed"`
	Winner   *WinnerRecord `json:"winner,omitempty"`
}

// RoundMeta is the part of a round written on finalization
type RoundMeta struct {
	Failed bool          `json:"failed"`
	Winner *WinnerRecord `json:"winner,omitempty"`
}

// Ledger holds the aggregate state of the raffle
type Ledger struct {
	CurrentRound   uint64      `json:"currentRound"`
	OpenedAt       int64       `json:"openedAt"`
	State          RaffleState `json:"state"`
	FeeBalance     *big.Int    `json:"feeBalance"`
	Balance        *big.Int    `json:"balance"`
	Owner          string      `json:"owner"`
	PendingRequest uint64      `json:"pendingRequest"`

	// GasReserve is the part of FeeBalance kept for the network fees of
	// transfers still owed to winners and refunded participants
	GasReserve *big.Int `json:"gasReserve"`
}

// RandomnessRequest carries the fixed parameters of a randomness request
type RandomnessRequest struct {
	KeyHash          string
	SubscriptionID   uint64
	Confirmations    uint16
	CallbackGasLimit uint32
	NumWords         uint32
}

// RaffleInfo is a read-only view of the raffle used by the bot and the api
type RaffleInfo struct {
	Round         uint64      `json:"round"`
	State         RaffleState `json:"state"`
	StateName     string      `json:"stateName"`
	EntranceFee   *big.Int    `json:"entranceFee"`
	MinimumPayout *big.Int    `json:"minimumPayout"`
	Interval      int64       `json:"interval"`
	OpenedAt      int64       `json:"openedAt"`
	Deadline      int64       `json:"deadline"`
	Entrants      uint64      `json:"entrants"`
	Pool          *big.Int    `json:"pool"`
	FeeBalance    *big.Int    `json:"feeBalance"`
	GasReserve    *big.Int    `json:"gasReserve"`
	Withdrawable  *big.Int    `json:"withdrawable"`
	Balance       *big.Int    `json:"balance"`
	Owner         string      `json:"owner"`
}
