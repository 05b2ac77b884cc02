package raffle

import (
	"context"
	"math/big"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/storage"
)

// consumer is the only way into fulfillment; New gives it to the coordinator
type consumer struct {
	r *Raffle
}

func (c *consumer) FulfillRandomWords(ctx context.Context, requestID uint64, words []*big.Int) error {
	return c.r.fulfillRandomWords(ctx, requestID, words)
}

func (r *Raffle) fulfillRandomWords(_ context.Context, requestID uint64, words []*big.Int) error {
	if len(words) == 0 || words[0] == nil {
		return ErrNoRandomWords
	}

	var ev data.Event
	err := r.update(func(tx storage.Tx, ledger *data.Ledger) error {
		if ledger.State != data.StateCalculating || ledger.PendingRequest != requestID {
			return ErrUnknownRequest
		}

		round := ledger.CurrentRound
		entrants, err := tx.EntrantCount(round)
		if err != nil {
			return err
		}
		pool := poolValue(r.cfg.EntranceFee, entrants)

		meta := &data.RoundMeta{}
		claims := uint64(1)
		if entrants == 0 || pool.Cmp(r.cfg.MinimumPayout) < 0 {
			meta.Failed = true
			ev = data.RoundFailedEvent{Round: round, Entrants: entrants, Pool: pool}
			if claims, err = refundClaims(tx, round); err != nil {
				return err
			}
		} else {
			winner, err := tx.Entrant(round, winnerIndex(words[0], entrants))
			if err != nil {
				return err
			}
			meta.Winner = &data.WinnerRecord{Winner: winner, Amount: payoutOf(pool)}
			ev = data.WinnerPickedEvent{Round: round, Winner: winner, Amount: copyInt(meta.Winner.Amount)}
		}
		if err := tx.PutRoundMeta(round, meta); err != nil {
			return err
		}
		// keep the fee of one transfer per claim, release the rest
		if entrants > claims {
			release := new(big.Int).Mul(r.cfg.TransferCost, new(big.Int).SetUint64(entrants-claims))
			ledger.GasReserve = sub(ledger.GasReserve, release)
		}

		ledger.CurrentRound++
		ledger.OpenedAt = r.now().Unix()
		ledger.State = data.StateOpen
		ledger.PendingRequest = 0

		return tx.PutLedger(ledger)
	})
	if err != nil {
		log.Warn("fulfillment rejected", "request", requestID, "error", err)
		return err
	}

	switch e := ev.(type) {
	case data.WinnerPickedEvent:
		log.Info("winner picked", "round", e.Round, "winner", e.Winner, "amount", e.Amount.String())
	case data.RoundFailedEvent:
		log.Info("round failed", "round", e.Round, "entrants", e.Entrants, "pool", e.Pool.String())
	}
	r.publish(ev)

	return nil
}

// refundClaims is the number of distinct participants of a failed round
func refundClaims(tx storage.Tx, round uint64) (uint64, error) {
	entrants, err := tx.Entrants(round)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(entrants))
	for _, address := range entrants {
		seen[address] = struct{}{}
	}

	return uint64(len(seen)), nil
}
