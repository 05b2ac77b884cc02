package raffle

import (
	"context"
	"fmt"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/storage"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var participants = []string{"alice", "bob", "carol", "dave"}

func TestLedgerAccountingProperties(t *testing.T) {
	dir := t.TempDir()
	run := 0

	rapid.Check(t, func(rt *rapid.T) {
		run++
		store, err := storage.NewBoltStore(filepath.Join(dir, fmt.Sprintf("raffle-%d.db", run)))
		require.NoError(rt, err)
		defer store.Close()

		coord := &fakeCoordinator{}
		transf := &fakeTransferer{}
		clock := &fakeClock{now: time.Unix(1700000000, 0)}
		cfg := testConfig()
		cfg.MinimumPayout = big.NewInt(rapid.Int64Range(0, 6*testFee).Draw(rt, "minimum"))
		cost := rapid.Int64Range(0, testFee/10).Draw(rt, "cost")
		cfg.TransferCost = big.NewInt(cost)
		r, err := New(cfg, testOwner, store, coord, transf, WithClock(clock.Now))
		require.NoError(rt, err)

		ctx := context.Background()
		fees := big.NewInt(0)
		received := big.NewInt(0)
		paidOut := big.NewInt(0)
		var claims int64
		entries := map[string]uint64{}
		var entrants uint64

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			who := rapid.SampledFrom(participants).Draw(rt, "who")
			value := big.NewInt(rapid.Int64Range(0, 3*testFee).Draw(rt, "value"))

			err := r.Enter(ctx, who, value)
			if value.Int64() < testFee {
				require.ErrorIs(rt, err, ErrInsufficientPayment)
				continue
			}
			require.NoError(rt, err)

			fees.Add(fees, new(big.Int).Quo(new(big.Int).Mul(value, big.NewInt(10)), big.NewInt(100)))
			received.Add(received, value)
			entries[who]++
			entrants++
		}

		gotFees, err := r.FeeBalance()
		require.NoError(rt, err)
		require.Equal(rt, fees.String(), gotFees.String())

		var sum uint64
		for _, who := range participants {
			n, err := r.EntryCount(0, who)
			require.NoError(rt, err)
			require.Equal(rt, entries[who], n)
			sum += n
		}
		n, err := r.EntrantCount(0)
		require.NoError(rt, err)
		require.Equal(rt, entrants, n)
		require.Equal(rt, entrants, sum)

		available, err := r.WithdrawableFees()
		require.NoError(rt, err)
		require.Equal(rt, new(big.Int).Sub(fees, big.NewInt(cost*int64(entrants))).String(), available.String())

		clock.advance(cfg.Interval + time.Second)
		err = r.PerformUpkeep(ctx, nil)
		if entrants == 0 {
			require.ErrorIs(rt, err, ErrUpkeepNotNeeded)
			return
		}
		require.NoError(rt, err)

		word := rapid.Int64Min(0).Draw(rt, "word")
		require.NoError(rt, coord.fulfill(word))

		round, err := r.Round(0)
		require.NoError(rt, err)
		pool := int64(entrants) * testFee
		if pool < cfg.MinimumPayout.Int64() {
			require.True(rt, round.Failed)
			require.Nil(rt, round.Winner)
			for _, who := range participants {
				if entries[who] == 0 {
					continue
				}
				require.NoError(rt, r.FailedRaffleWithdraw(ctx, who, 0))
				paidOut.Add(paidOut, big.NewInt(int64(entries[who])*testFee*90/100))
				claims++
			}
		} else {
			require.False(rt, round.Failed)
			require.NotNil(rt, round.Winner)
			require.Equal(rt, round.Entrants[uint64(word)%entrants], round.Winner.Winner)
			require.Equal(rt, pool*90/100, round.Winner.Amount.Int64())
			require.NoError(rt, r.WinnerWithdraw(ctx, 0))
			paidOut.Add(paidOut, round.Winner.Amount)
			claims++
		}

		// custody pays one network fee per claim out of the fee balance,
		// and still covers what is owed to the administrator
		gas := big.NewInt(cost * claims)
		info, err := r.Info()
		require.NoError(rt, err)
		require.Zero(rt, info.GasReserve.Sign())
		require.Equal(rt, new(big.Int).Sub(fees, gas).String(), info.FeeBalance.String())
		spent := new(big.Int).Add(paidOut, gas)
		require.Equal(rt, new(big.Int).Sub(received, spent).String(), info.Balance.String())
		require.True(rt, info.Balance.Cmp(info.FeeBalance) >= 0)

		if info.Withdrawable.Cmp(big.NewInt(cost)) > 0 {
			require.NoError(rt, r.OwnerWithdraw(ctx, testOwner, info.Withdrawable))
			balance, err := r.Balance()
			require.NoError(rt, err)
			require.True(rt, balance.Sign() >= 0)
			require.Equal(rt, new(big.Int).Sub(info.Balance, info.Withdrawable).String(), balance.String())
		}

		current, err := r.CurrentRound()
		require.NoError(rt, err)
		require.Equal(rt, uint64(1), current)
		state, err := r.State()
		require.NoError(rt, err)
		require.Equal(rt, data.StateOpen, state)
	})
}

func TestWinnerIndexIsModulo(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		word := rapid.Uint64().Draw(rt, "word")
		n := rapid.Uint64Range(1, 1000).Draw(rt, "entrants")

		idx := winnerIndex(new(big.Int).SetUint64(word), n)
		require.Less(rt, idx, n)
		require.Equal(rt, word%n, idx)
	})
}

func TestPayoutNeverExceedsPool(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		fee := big.NewInt(rapid.Int64Range(1, 1<<40).Draw(rt, "fee"))
		n := rapid.Uint64Range(0, 1<<20).Draw(rt, "entrants")

		pool := poolValue(fee, n)
		payout := payoutOf(pool)
		require.True(rt, payout.Cmp(pool) <= 0)
		require.Equal(rt, refundOf(fee, n).String(), payout.String())
	})
}
