package storage

import "errors"

var (
	// ErrNotInitialized is returned by Ledger before the first PutLedger
	ErrNotInitialized = errors.New("ledger not initialized")

	errEntrantNotFound = errors.New("entrant not found")
)

var (
	ledgerBucket   = []byte("ledger")
	roundsBucket   = []byte("rounds")
	entrantsBucket = []byte("entrants")
	entriesBucket  = []byte("entries")

	ledgerKey = []byte("state")
	metaKey   = []byte("meta")
)
