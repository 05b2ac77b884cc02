package raffle

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/DrDelphi/EgldRaffle/data"
)

var (
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrRoundNotOpen        = errors.New("round not open")
	ErrUpkeepNotNeeded     = errors.New("upkeep not needed")
	ErrTransferFailed      = errors.New("transfer failed")
	ErrAlreadyPaid         = errors.New("already paid")
	ErrRoundNotFailed      = errors.New("round not failed")
	ErrNotOwner            = errors.New("not owner")

	ErrNoWinner       = errors.New("round has no winner")
	ErrRoundNotFound  = errors.New("round not found")
	ErrUnknownRequest = errors.New("unknown randomness request")
	ErrNoRandomWords  = errors.New("no random words")
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidConfig  = errors.New("invalid raffle config")

	// ErrNotSent is matched by Transferer errors raised before anything was
	// handed to the network. Any other transfer error leaves the outcome unknown.
	ErrNotSent             = errors.New("transfer not sent")
	ErrTransferUnconfirmed = errors.New("transfer unconfirmed")
)

// UpkeepNotNeededError describes why PerformUpkeep refused to close the round
type UpkeepNotNeededError struct {
	Balance  *big.Int
	Entrants uint64
	State    data.RaffleState
}

func (e *UpkeepNotNeededError) Error() string {
	return fmt.Sprintf("upkeep not needed: balance %s, entrants %d, state %s", e.Balance, e.Entrants, e.State)
}

func (e *UpkeepNotNeededError) Is(target error) bool {
	return target == ErrUpkeepNotNeeded
}

// TransferError is returned when an outbound transfer fails. Unconfirmed is
// set when the transfer may have been broadcast; the guard then stays set.
type TransferError struct {
	To          string
	Amount      *big.Int
	Unconfirmed bool
	Err         error
}

func (e *TransferError) Error() string {
	if e.Unconfirmed {
		return fmt.Sprintf("transfer unconfirmed: %s to %s: %v", e.Amount, e.To, e.Err)
	}
	return fmt.Sprintf("transfer failed: %s to %s: %v", e.Amount, e.To, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

func (e *TransferError) Is(target error) bool {
	return target == ErrTransferFailed || (e.Unconfirmed && target == ErrTransferUnconfirmed)
}
