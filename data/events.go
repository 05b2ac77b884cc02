package data

import "math/big"

// Event is emitted by the raffle after a state change is committed
type Event interface {
	EventName() string
}

type EnteredEvent struct {
	Round       uint64
	Participant string
	Value       *big.Int
}

type RandomnessRequestedEvent struct {
	Round     uint64
	RequestID uint64
}

type WinnerPickedEvent struct {
	Round  uint64
	Winner string
	Amount *big.Int
}

type RoundFailedEvent struct {
	Round    uint64
	Entrants uint64
	Pool     *big.Int
}

type WinnerPaidEvent struct {
	Round  uint64
	Winner string
	Amount *big.Int
}

type RefundedEvent struct {
	Round       uint64
	Participant string
	Amount      *big.Int
}

type FeesWithdrawnEvent struct {
	Owner  string
	Amount *big.Int
}

type OwnerChangedEvent struct {
	Previous string
	Owner    string
}

// TransferUnconfirmedEvent reports a transfer that may have left custody
// although the network returned an error. Its guard stays committed.
type TransferUnconfirmedEvent struct {
	To     string
	Amount *big.Int
	Reason string
}

func (EnteredEvent) EventName() string             { return "entered" }
func (RandomnessRequestedEvent) EventName() string { return "randomness_requested" }
func (WinnerPickedEvent) EventName() string        { return "winner_picked" }
func (RoundFailedEvent) EventName() string         { return "round_failed" }
func (WinnerPaidEvent) EventName() string          { return "winner_paid" }
func (RefundedEvent) EventName() string            { return "refunded" }
func (FeesWithdrawnEvent) EventName() string       { return "fees_withdrawn" }
func (OwnerChangedEvent) EventName() string        { return "owner_changed" }
func (TransferUnconfirmedEvent) EventName() string { return "transfer_unconfirmed" }
