package raffle

import (
	"context"
	"math/big"
	"time"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/storage"
)

// Enter - records one entry of participant paying value into the current round
func (r *Raffle) Enter(ctx context.Context, participant string, value *big.Int) error {
	if participant == "" {
		return ErrInvalidAddress
	}
	if value == nil || value.Cmp(r.cfg.EntranceFee) < 0 {
		return ErrInsufficientPayment
	}

	var ev data.EnteredEvent
	err := r.update(func(tx storage.Tx, ledger *data.Ledger) error {
		if ledger.State != data.StateOpen {
			return ErrRoundNotOpen
		}

		round := ledger.CurrentRound
		if _, err := tx.AppendEntrant(round, participant); err != nil {
			return err
		}
		count, err := tx.EntryCount(round, participant)
		if err != nil {
			return err
		}
		if err := tx.SetEntryCount(round, participant, count+1); err != nil {
			return err
		}

		ledger.FeeBalance = add(ledger.FeeBalance, entryFee(value))
		ledger.Balance = add(ledger.Balance, value)
		// every entry may turn into a refund transfer
		ledger.GasReserve = add(ledger.GasReserve, r.cfg.TransferCost)
		ev = data.EnteredEvent{Round: round, Participant: participant, Value: copyInt(value)}

		return tx.PutLedger(ledger)
	})
	if err != nil {
		return err
	}

	log.Debug("entered", "round", ev.Round, "participant", participant, "value", value.String())
	r.publish(ev)

	return nil
}

// Receive - handles a bare inbound transfer as an entry of its sender
func (r *Raffle) Receive(ctx context.Context, from string, value *big.Int) error {
	return r.Enter(ctx, from, value)
}

// CheckUpkeep - reports whether the current round is ready to be closed.
// The returned payload echoes checkData.
func (r *Raffle) CheckUpkeep(ctx context.Context, checkData []byte) (bool, []byte, error) {
	var needed bool
	err := r.view(func(tx storage.Tx, ledger *data.Ledger) error {
		var err error
		needed, _, err = r.upkeepNeeded(tx, ledger)
		return err
	})
	if err != nil {
		return false, nil, err
	}

	return needed, checkData, nil
}

func (r *Raffle) upkeepNeeded(tx storage.Tx, ledger *data.Ledger) (bool, uint64, error) {
	entrants, err := tx.EntrantCount(ledger.CurrentRound)
	if err != nil {
		return false, 0, err
	}

	interval := int64(r.cfg.Interval / time.Second)
	timePassed := r.now().Unix()-ledger.OpenedAt > interval
	isOpen := ledger.State == data.StateOpen
	hasBalance := ledger.Balance != nil && ledger.Balance.Sign() > 0
	hasPlayers := entrants > 0

	needed := timePassed && isOpen && hasBalance && hasPlayers
	if r.cfg.GateUpkeepOnMinimum {
		needed = needed && poolValue(r.cfg.EntranceFee, entrants).Cmp(r.cfg.MinimumPayout) >= 0
	}

	return needed, entrants, nil
}

// PerformUpkeep - closes the current round and requests randomness for it.
// The predicate is evaluated again so that racing callers close a round once.
func (r *Raffle) PerformUpkeep(ctx context.Context, performData []byte) error {
	var ev data.RandomnessRequestedEvent
	err := r.update(func(tx storage.Tx, ledger *data.Ledger) error {
		needed, entrants, err := r.upkeepNeeded(tx, ledger)
		if err != nil {
			return err
		}
		if !needed {
			return &UpkeepNotNeededError{
				Balance:  copyInt(ledger.Balance),
				Entrants: entrants,
				State:    ledger.State,
			}
		}

		ledger.State = data.StateCalculating
		requestID, err := r.coordinator.RequestRandomWords(ctx, data.RandomnessRequest{
			KeyHash:          r.cfg.KeyHash,
			SubscriptionID:   r.cfg.SubscriptionID,
			Confirmations:    r.cfg.Confirmations,
			CallbackGasLimit: r.cfg.CallbackGasLimit,
			NumWords:         r.cfg.NumWords,
		})
		if err != nil {
			log.Error("randomness request failed", "round", ledger.CurrentRound, "error", err)
			return err
		}
		ledger.PendingRequest = requestID
		ev = data.RandomnessRequestedEvent{Round: ledger.CurrentRound, RequestID: requestID}

		return tx.PutLedger(ledger)
	})
	if err != nil {
		return err
	}

	log.Info("requested randomness", "round", ev.Round, "request", ev.RequestID)
	r.publish(ev)

	return nil
}
