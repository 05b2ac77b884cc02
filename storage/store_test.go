package storage

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func newTestStore(t *testing.T) (*BoltStore, string) {
	path := filepath.Join(t.TempDir(), "raffle.db")
	store, err := NewBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, path
}

func TestLedgerNotInitialized(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.View(func(tx Tx) error {
		_, err := tx.Ledger()
		return err
	})
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestLedgerRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	in := &data.Ledger{
		CurrentRound:   3,
		OpenedAt:       1700000000,
		State:          data.StateCalculating,
		FeeBalance:     big.NewInt(42),
		Balance:        big.NewInt(420),
		Owner:          "erd1owner",
		PendingRequest: 7,
	}
	require.NoError(t, store.Update(func(tx Tx) error {
		return tx.PutLedger(in)
	}))

	var out *data.Ledger
	require.NoError(t, store.View(func(tx Tx) error {
		var err error
		out, err = tx.Ledger()
		return err
	}))
	assert.Equal(t, in.CurrentRound, out.CurrentRound)
	assert.Equal(t, in.State, out.State)
	assert.Equal(t, 0, in.FeeBalance.Cmp(out.FeeBalance))
	assert.Equal(t, 0, in.Balance.Cmp(out.Balance))
	assert.Equal(t, in.Owner, out.Owner)
	assert.Equal(t, in.PendingRequest, out.PendingRequest)
}

func TestEntrantsAndEntryCounts(t *testing.T) {
	store, _ := newTestStore(t)

	players := []string{"alice", "bob", "alice"}
	require.NoError(t, store.Update(func(tx Tx) error {
		for i, p := range players {
			n, err := tx.AppendEntrant(0, p)
			if err != nil {
				return err
			}
			if n != uint64(i+1) {
				return xerrors.Errorf("unexpected count %d", n)
			}
			c, err := tx.EntryCount(0, p)
			if err != nil {
				return err
			}
			if err := tx.SetEntryCount(0, p, c+1); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, store.View(func(tx Tx) error {
		n, err := tx.EntrantCount(0)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), n)

		entrants, err := tx.Entrants(0)
		require.NoError(t, err)
		assert.Equal(t, players, entrants)

		second, err := tx.Entrant(0, 1)
		require.NoError(t, err)
		assert.Equal(t, "bob", second)

		_, err = tx.Entrant(0, 3)
		assert.ErrorIs(t, err, errEntrantNotFound)

		alice, err := tx.EntryCount(0, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(2), alice)

		carol, err := tx.EntryCount(0, "carol")
		require.NoError(t, err)
		assert.Zero(t, carol)

		other, err := tx.EntrantCount(1)
		require.NoError(t, err)
		assert.Zero(t, other)
		return nil
	}))
}

func TestFailedUpdateRollsBack(t *testing.T) {
	store, _ := newTestStore(t)
	boom := xerrors.New("boom")

	err := store.Update(func(tx Tx) error {
		if _, err := tx.AppendEntrant(0, "alice"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, store.View(func(tx Tx) error {
		n, err := tx.EntrantCount(0)
		require.NoError(t, err)
		assert.Zero(t, n)
		return nil
	}))
}

func TestRoundMetaSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raffle.db")
	store, err := NewBoltStore(path)
	require.NoError(t, err)

	meta := &data.RoundMeta{Winner: &data.WinnerRecord{Winner: "alice", Amount: big.NewInt(90)}}
	require.NoError(t, store.Update(func(tx Tx) error {
		if _, err := tx.AppendEntrant(4, "alice"); err != nil {
			return err
		}
		return tx.PutRoundMeta(4, meta)
	}))
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.View(func(tx Tx) error {
		got, err := tx.RoundMeta(4)
		require.NoError(t, err)
		require.NotNil(t, got.Winner)
		assert.Equal(t, "alice", got.Winner.Winner)
		assert.False(t, got.Winner.Paid)
		assert.False(t, got.Failed)

		empty, err := tx.RoundMeta(5)
		require.NoError(t, err)
		assert.Nil(t, empty.Winner)
		return nil
	}))
}
