package metrics

import (
	"math/big"
	"testing"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func egldInt(f int64) *big.Int {
	v := big.NewInt(f)
	return v.Mul(v, new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestCollectorCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.Publish(data.EnteredEvent{Round: 0, Participant: "alice", Value: egldInt(1)})
	c.Publish(data.EnteredEvent{Round: 0, Participant: "bob", Value: egldInt(2)})
	c.Publish(data.RandomnessRequestedEvent{Round: 0, RequestID: 1})

	assert.Equal(t, float64(2), testutil.ToFloat64(c.entries))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.received))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.entrants))
	assert.Equal(t, float64(data.StateCalculating), testutil.ToFloat64(c.state))

	c.Publish(data.WinnerPickedEvent{Round: 0, Winner: "bob", Amount: egldInt(1)})
	c.Publish(data.WinnerPaidEvent{Round: 0, Winner: "bob", Amount: egldInt(1)})
	c.Publish(data.RoundFailedEvent{Round: 1})
	c.Publish(data.RefundedEvent{Round: 1, Participant: "alice", Amount: egldInt(2)})
	c.Publish(data.FeesWithdrawnEvent{Owner: "owner", Amount: egldInt(3)})
	c.Publish(data.OwnerChangedEvent{Previous: "owner", Owner: "next"})
	c.Publish(data.TransferUnconfirmedEvent{To: "bob", Amount: egldInt(4), Reason: "timeout"})

	assert.Equal(t, float64(1), testutil.ToFloat64(c.rounds.WithLabelValues("won")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.rounds.WithLabelValues("failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.paid.WithLabelValues("prize")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.paid.WithLabelValues("refund")))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.paid.WithLabelValues("fees")))
	assert.Equal(t, float64(4), testutil.ToFloat64(c.paid.WithLabelValues("unconfirmed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.owners))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.round))
	assert.Zero(t, testutil.ToFloat64(c.entrants))
	assert.Equal(t, float64(data.StateOpen), testutil.ToFloat64(c.state))
}

func TestCollectorObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.Observe(nil)
	c.Observe(&data.RaffleInfo{
		Round:      7,
		State:      data.StateCalculating,
		Entrants:   4,
		Pool:       egldInt(4),
		FeeBalance: egldInt(1),
		Balance:    egldInt(9),
	})

	assert.Equal(t, float64(7), testutil.ToFloat64(c.round))
	assert.Equal(t, float64(4), testutil.ToFloat64(c.entrants))
	assert.Equal(t, float64(4), testutil.ToFloat64(c.pool))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.feeBal))
	assert.Equal(t, float64(9), testutil.ToFloat64(c.custody))

	count, err := testutil.GatherAndCount(reg, "raffle_current_round", "raffle_pool_egld")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCollectorRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)

	c.Unregister(reg)
	_, err = NewCollector(reg)
	assert.NoError(t, err)
}
