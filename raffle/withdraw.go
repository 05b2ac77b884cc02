package raffle

import (
	"context"
	"errors"
	"math/big"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/storage"
)

// WinnerWithdraw - pays the winner of a finalized round. Anyone may relay it.
func (r *Raffle) WinnerWithdraw(ctx context.Context, roundID uint64) error {
	var winner data.WinnerRecord
	err := r.update(func(tx storage.Tx, ledger *data.Ledger) error {
		if roundID > ledger.CurrentRound {
			return ErrRoundNotFound
		}
		meta, err := tx.RoundMeta(roundID)
		if err != nil {
			return err
		}
		if meta.Winner == nil {
			return ErrNoWinner
		}
		if meta.Winner.Paid {
			return ErrAlreadyPaid
		}

		meta.Winner.Paid = true
		if err := tx.PutRoundMeta(roundID, meta); err != nil {
			return err
		}
		winner = *meta.Winner
		r.debitClaim(ledger, winner.Amount)

		return tx.PutLedger(ledger)
	})
	if err != nil {
		return err
	}

	err = r.transfer(ctx, winner.Winner, winner.Amount, func(tx storage.Tx, ledger *data.Ledger) error {
		meta, err := tx.RoundMeta(roundID)
		if err != nil {
			return err
		}
		meta.Winner.Paid = false
		r.creditClaim(ledger, winner.Amount)
		return tx.PutRoundMeta(roundID, meta)
	})
	if err != nil {
		return err
	}

	r.publish(data.WinnerPaidEvent{Round: roundID, Winner: winner.Winner, Amount: copyInt(winner.Amount)})

	return nil
}

// FailedRaffleWithdraw - refunds caller's entries in a failed round
func (r *Raffle) FailedRaffleWithdraw(ctx context.Context, caller string, roundID uint64) error {
	var (
		count  uint64
		amount *big.Int
	)
	err := r.update(func(tx storage.Tx, ledger *data.Ledger) error {
		if roundID > ledger.CurrentRound {
			return ErrRoundNotFound
		}
		meta, err := tx.RoundMeta(roundID)
		if err != nil {
			return err
		}
		if !meta.Failed {
			return ErrRoundNotFailed
		}
		count, err = tx.EntryCount(roundID, caller)
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrTransferFailed
		}

		if err := tx.SetEntryCount(roundID, caller, 0); err != nil {
			return err
		}
		amount = refundOf(r.cfg.EntranceFee, count)
		r.debitClaim(ledger, amount)

		return tx.PutLedger(ledger)
	})
	if err != nil {
		return err
	}

	err = r.transfer(ctx, caller, amount, func(tx storage.Tx, ledger *data.Ledger) error {
		r.creditClaim(ledger, amount)
		return tx.SetEntryCount(roundID, caller, count)
	})
	if err != nil {
		return err
	}

	r.publish(data.RefundedEvent{Round: roundID, Participant: caller, Amount: copyInt(amount)})

	return nil
}

// OwnerWithdraw - takes amount out of the withdrawable fees and sends it to
// the administrator. The network fee of the transfer is paid out of amount.
func (r *Raffle) OwnerWithdraw(ctx context.Context, caller string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrTransferFailed
	}
	cost := r.cfg.TransferCost
	if cost.Sign() > 0 && amount.Cmp(cost) <= 0 {
		return ErrTransferFailed
	}

	err := r.update(func(tx storage.Tx, ledger *data.Ledger) error {
		if err := onlyOwner(ledger, caller); err != nil {
			return err
		}
		if amount.Cmp(withdrawable(ledger)) > 0 {
			return ErrTransferFailed
		}

		ledger.FeeBalance = sub(ledger.FeeBalance, amount)
		ledger.Balance = sub(ledger.Balance, amount)

		return tx.PutLedger(ledger)
	})
	if err != nil {
		return err
	}

	sent := new(big.Int).Sub(amount, cost)
	err = r.transfer(ctx, caller, sent, func(_ storage.Tx, ledger *data.Ledger) error {
		ledger.FeeBalance = add(ledger.FeeBalance, amount)
		ledger.Balance = add(ledger.Balance, amount)
		return nil
	})
	if err != nil {
		return err
	}

	r.publish(data.FeesWithdrawnEvent{Owner: caller, Amount: copyInt(amount)})

	return nil
}

// ChangeOwner - hands the administrator role to newOwner
func (r *Raffle) ChangeOwner(ctx context.Context, caller string, newOwner string) error {
	var ev data.OwnerChangedEvent
	err := r.update(func(tx storage.Tx, ledger *data.Ledger) error {
		if err := onlyOwner(ledger, caller); err != nil {
			return err
		}
		if newOwner == "" {
			return ErrTransferFailed
		}

		ev = data.OwnerChangedEvent{Previous: ledger.Owner, Owner: newOwner}
		ledger.Owner = newOwner

		return tx.PutLedger(ledger)
	})
	if err != nil {
		return err
	}

	log.Info("owner changed", "previous", ev.Previous, "owner", ev.Owner)
	r.publish(ev)

	return nil
}

func onlyOwner(ledger *data.Ledger, caller string) error {
	if caller == "" || caller != ledger.Owner {
		return ErrNotOwner
	}

	return nil
}

// debitClaim takes a prize or refund and the network fee of its transfer
// out of custody. The fee comes out of the gas reserve.
func (r *Raffle) debitClaim(ledger *data.Ledger, amount *big.Int) {
	cost := r.cfg.TransferCost
	ledger.Balance = sub(ledger.Balance, new(big.Int).Add(amount, cost))
	ledger.FeeBalance = sub(ledger.FeeBalance, cost)
	ledger.GasReserve = sub(ledger.GasReserve, cost)
}

func (r *Raffle) creditClaim(ledger *data.Ledger, amount *big.Int) {
	cost := r.cfg.TransferCost
	ledger.Balance = add(ledger.Balance, new(big.Int).Add(amount, cost))
	ledger.FeeBalance = add(ledger.FeeBalance, cost)
	ledger.GasReserve = add(ledger.GasReserve, cost)
}

// transfer sends amount to the receiver once the guard is committed. When
// the transferer reports that nothing was sent, restore undoes the guard in
// a new transaction. Any other failure leaves the guard set, since the value
// may already be on its way, and is published for the administrator.
func (r *Raffle) transfer(ctx context.Context, to string, amount *big.Int, restore func(tx storage.Tx, ledger *data.Ledger) error) error {
	err := r.transferer.Transfer(ctx, to, amount)
	if err == nil {
		log.Info("transferred", "to", to, "amount", amount.String())
		return nil
	}

	if !errors.Is(err, ErrNotSent) {
		log.Error("transfer outcome unknown, guard kept", "to", to, "amount", amount.String(), "error", err)
		r.publish(data.TransferUnconfirmedEvent{To: to, Amount: copyInt(amount), Reason: err.Error()})
		return &TransferError{To: to, Amount: copyInt(amount), Unconfirmed: true, Err: err}
	}

	log.Warn("transfer not sent, restoring guard", "to", to, "amount", amount.String(), "error", err)
	rerr := r.update(func(tx storage.Tx, ledger *data.Ledger) error {
		if err := restore(tx, ledger); err != nil {
			return err
		}
		return tx.PutLedger(ledger)
	})
	if rerr != nil {
		log.Error("can not restore guard after failed transfer", "to", to, "amount", amount.String(), "error", rerr)
	}

	return &TransferError{To: to, Amount: copyInt(amount), Err: err}
}
