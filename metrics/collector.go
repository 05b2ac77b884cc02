package metrics

import (
	"math/big"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/utils"
	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/prometheus/client_golang/prometheus"
)

var log = logger.GetOrCreate("metrics")

const namespace = "raffle"

// Collector turns raffle events and snapshots into prometheus metrics.
// It is an event sink.
type Collector struct {
	entries   prometheus.Counter
	received  prometheus.Counter
	requests  prometheus.Counter
	rounds    *prometheus.CounterVec
	paid      *prometheus.CounterVec
	owners    prometheus.Counter
	round     prometheus.Gauge
	entrants  prometheus.Gauge
	pool      prometheus.Gauge
	feeBal    prometheus.Gauge
	custody   prometheus.Gauge
	state     prometheus.Gauge
	collected []prometheus.Collector
}

// NewCollector - creates the raffle metrics and registers them with reg
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		entries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Accepted entries",
		}),
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "received_egld_total",
			Help:      "Value paid in by entrants",
		}),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "randomness_requests_total",
			Help:      "Randomness requests issued by upkeep",
		}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Finalized rounds by outcome",
		}, []string{"outcome"}),
		paid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paid_egld_total",
			Help:      "Value sent out of custody by kind",
		}, []string{"kind"}),
		owners: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "owner_changes_total",
			Help:      "Administrator hand-overs",
		}),
		round: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_round",
			Help:      "Id of the open round",
		}),
		entrants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_entrants",
			Help:      "Entries in the open round",
		}),
		pool: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_egld",
			Help:      "Nominal pool of the open round",
		}),
		feeBal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fee_balance_egld",
			Help:      "Fees available to the administrator",
		}),
		custody: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "custody_balance_egld",
			Help:      "Value held in custody",
		}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "0 while open, 1 while calculating",
		}),
	}
	c.collected = []prometheus.Collector{
		c.entries, c.received, c.requests, c.rounds, c.paid, c.owners,
		c.round, c.entrants, c.pool, c.feeBal, c.custody, c.state,
	}

	for _, col := range c.collected {
		if err := reg.Register(col); err != nil {
			log.Error("can not register metric", "error", err)
			return nil, err
		}
	}

	return c, nil
}

// Publish - updates the counters an event affects
func (c *Collector) Publish(ev data.Event) {
	switch e := ev.(type) {
	case data.EnteredEvent:
		c.entries.Inc()
		c.received.Add(egld(e.Value))
		c.entrants.Inc()
	case data.RandomnessRequestedEvent:
		c.requests.Inc()
		c.state.Set(float64(data.StateCalculating))
	case data.WinnerPickedEvent:
		c.rounds.WithLabelValues("won").Inc()
		c.nextRound(e.Round)
	case data.RoundFailedEvent:
		c.rounds.WithLabelValues("failed").Inc()
		c.nextRound(e.Round)
	case data.WinnerPaidEvent:
		c.paid.WithLabelValues("prize").Add(egld(e.Amount))
	case data.RefundedEvent:
		c.paid.WithLabelValues("refund").Add(egld(e.Amount))
	case data.FeesWithdrawnEvent:
		c.paid.WithLabelValues("fees").Add(egld(e.Amount))
	case data.OwnerChangedEvent:
		c.owners.Inc()
	case data.TransferUnconfirmedEvent:
		c.paid.WithLabelValues("unconfirmed").Add(egld(e.Amount))
	}
}

// Observe - sets the gauges from a raffle snapshot
func (c *Collector) Observe(info *data.RaffleInfo) {
	if info == nil {
		return
	}

	c.round.Set(float64(info.Round))
	c.entrants.Set(float64(info.Entrants))
	c.pool.Set(egld(info.Pool))
	c.feeBal.Set(egld(info.FeeBalance))
	c.custody.Set(egld(info.Balance))
	c.state.Set(float64(info.State))
}

// Unregister - removes the collector's metrics from reg
func (c *Collector) Unregister(reg prometheus.Registerer) {
	for _, col := range c.collected {
		reg.Unregister(col)
	}
}

func (c *Collector) nextRound(finished uint64) {
	c.round.Set(float64(finished + 1))
	c.entrants.Set(0)
	c.state.Set(float64(data.StateOpen))
}

func egld(amount *big.Int) float64 {
	return utils.Denominate(amount, utils.EgldDecimals)
}
