package network

import (
	"errors"

	"github.com/DrDelphi/EgldRaffle/raffle"
)

var (
	errInvalidAddress = errors.New("invalid address")
	errInvalidAmount  = errors.New("invalid amount")
)

// transaction statuses reported by the proxy
const (
	StatusPending  = "pending"
	StatusSuccess  = "success"
	StatusExecuted = "executed"
)

// sendError marks a failure that happened before the proxy saw the transaction
type sendError struct {
	err error
}

func notSent(err error) error {
	return &sendError{err: err}
}

func (e *sendError) Error() string {
	return "not sent: " + e.err.Error()
}

func (e *sendError) Unwrap() error {
	return e.err
}

func (e *sendError) Is(target error) bool {
	return target == raffle.ErrNotSent
}
