package raffle

import (
	"errors"
	"math/big"
	"time"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/storage"
	logger "github.com/ElrondNetwork/elrond-go-logger"
	"golang.org/x/xerrors"
)

var log = logger.GetOrCreate("raffle")

// Raffle is the round state machine together with its ledger. Every
// mutating call runs in a single store transaction; outbound transfers are
// issued only after the guard state they depend on is committed.
type Raffle struct {
	cfg         data.RaffleConfig
	store       Store
	coordinator Coordinator
	transferer  Transferer
	sink        EventSink
	now         func() time.Time
}

// Option configures optional collaborators of a Raffle
type Option func(r *Raffle)

// WithClock replaces time.Now as the source of the current time
func WithClock(now func() time.Time) Option {
	return func(r *Raffle) {
		r.now = now
	}
}

// WithEventSink sets the sink receiving committed events
func WithEventSink(sink EventSink) Option {
	return func(r *Raffle) {
		r.sink = sink
	}
}

// New - creates a Raffle on top of store. The ledger is initialized with
// owner as administrator the first time the store is used; afterwards the
// stored ledger wins. The randomness consumer is registered with coordinator.
func New(cfg data.RaffleConfig, owner string, store Store, coordinator Coordinator, transferer Transferer, opts ...Option) (*Raffle, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if store == nil || coordinator == nil || transferer == nil {
		return nil, xerrors.Errorf("missing collaborator: %w", ErrInvalidConfig)
	}

	r := &Raffle{
		cfg:         cfg,
		store:       store,
		coordinator: coordinator,
		transferer:  transferer,
		sink:        MultiSink{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	err := store.Update(func(tx storage.Tx) error {
		_, err := tx.Ledger()
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrNotInitialized) {
			return err
		}
		if owner == "" {
			return ErrInvalidAddress
		}

		log.Info("initializing ledger", "owner", owner)
		return tx.PutLedger(&data.Ledger{
			OpenedAt:   r.now().Unix(),
			State:      data.StateOpen,
			FeeBalance: big.NewInt(0),
			GasReserve: big.NewInt(0),
			Balance:    big.NewInt(0),
			Owner:      owner,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := coordinator.AddConsumer(cfg.SubscriptionID, &consumer{r: r}); err != nil {
		log.Error("can not register randomness consumer", "subscription", cfg.SubscriptionID, "error", err)
		return nil, err
	}

	return r, nil
}

func validateConfig(cfg *data.RaffleConfig) error {
	if cfg.EntranceFee == nil || cfg.EntranceFee.Sign() <= 0 {
		return xerrors.Errorf("entrance fee must be positive: %w", ErrInvalidConfig)
	}
	if cfg.Interval < 0 {
		return xerrors.Errorf("negative interval: %w", ErrInvalidConfig)
	}
	if cfg.MinimumPayout == nil {
		cfg.MinimumPayout = big.NewInt(0)
	}
	if cfg.MinimumPayout.Sign() < 0 {
		return xerrors.Errorf("negative minimum payout: %w", ErrInvalidConfig)
	}
	if cfg.NumWords == 0 {
		return xerrors.Errorf("at least one random word is required: %w", ErrInvalidConfig)
	}
	if cfg.TransferCost == nil {
		cfg.TransferCost = big.NewInt(0)
	}
	if cfg.TransferCost.Sign() < 0 || cfg.TransferCost.Cmp(entryFee(cfg.EntranceFee)) > 0 {
		return xerrors.Errorf("transfer cost must be between zero and the skim of one entry: %w", ErrInvalidConfig)
	}

	cfg.EntranceFee = copyInt(cfg.EntranceFee)
	cfg.MinimumPayout = copyInt(cfg.MinimumPayout)
	cfg.TransferCost = copyInt(cfg.TransferCost)

	return nil
}

func (r *Raffle) publish(events ...data.Event) {
	for _, ev := range events {
		r.sink.Publish(ev)
	}
}

func (r *Raffle) view(fn func(tx storage.Tx, ledger *data.Ledger) error) error {
	return r.store.View(func(tx storage.Tx) error {
		ledger, err := tx.Ledger()
		if err != nil {
			return err
		}
		return fn(tx, ledger)
	})
}

func (r *Raffle) update(fn func(tx storage.Tx, ledger *data.Ledger) error) error {
	return r.store.Update(func(tx storage.Tx) error {
		ledger, err := tx.Ledger()
		if err != nil {
			return err
		}
		return fn(tx, ledger)
	})
}

// EntranceFee - returns the minimum value of one entry
func (r *Raffle) EntranceFee() *big.Int {
	return copyInt(r.cfg.EntranceFee)
}

func (r *Raffle) MinimumPayout() *big.Int {
	return copyInt(r.cfg.MinimumPayout)
}

func (r *Raffle) Interval() time.Duration {
	return r.cfg.Interval
}

// TransferCost - returns the network fee custody pays per outbound transfer
func (r *Raffle) TransferCost() *big.Int {
	return copyInt(r.cfg.TransferCost)
}

func (r *Raffle) State() (data.RaffleState, error) {
	var state data.RaffleState
	err := r.view(func(_ storage.Tx, ledger *data.Ledger) error {
		state = ledger.State
		return nil
	})

	return state, err
}

func (r *Raffle) CurrentRound() (uint64, error) {
	var round uint64
	err := r.view(func(_ storage.Tx, ledger *data.Ledger) error {
		round = ledger.CurrentRound
		return nil
	})

	return round, err
}

func (r *Raffle) Owner() (string, error) {
	var owner string
	err := r.view(func(_ storage.Tx, ledger *data.Ledger) error {
		owner = ledger.Owner
		return nil
	})

	return owner, err
}

// FeeBalance - returns the skim available to the administrator
func (r *Raffle) FeeBalance() (*big.Int, error) {
	var fees *big.Int
	err := r.view(func(_ storage.Tx, ledger *data.Ledger) error {
		fees = copyInt(ledger.FeeBalance)
		return nil
	})

	return fees, err
}

// WithdrawableFees - returns the part of the fee balance not reserved for
// the network fees of pending claims
func (r *Raffle) WithdrawableFees() (*big.Int, error) {
	var fees *big.Int
	err := r.view(func(_ storage.Tx, ledger *data.Ledger) error {
		fees = withdrawable(ledger)
		return nil
	})

	return fees, err
}

// Balance - returns the total value held in custody
func (r *Raffle) Balance() (*big.Int, error) {
	var balance *big.Int
	err := r.view(func(_ storage.Tx, ledger *data.Ledger) error {
		balance = copyInt(ledger.Balance)
		return nil
	})

	return balance, err
}

// LastTimestamp - returns the time the current round opened
func (r *Raffle) LastTimestamp() (time.Time, error) {
	var ts int64
	err := r.view(func(_ storage.Tx, ledger *data.Ledger) error {
		ts = ledger.OpenedAt
		return nil
	})

	return time.Unix(ts, 0), err
}

// Pool - returns the nominal pool of the current round
func (r *Raffle) Pool() (*big.Int, error) {
	var pool *big.Int
	err := r.view(func(tx storage.Tx, ledger *data.Ledger) error {
		n, err := tx.EntrantCount(ledger.CurrentRound)
		if err != nil {
			return err
		}
		pool = poolValue(r.cfg.EntranceFee, n)
		return nil
	})

	return pool, err
}

// Round - returns the registry entry of a round, current or historical
func (r *Raffle) Round(id uint64) (*data.Round, error) {
	var round *data.Round
	err := r.view(func(tx storage.Tx, ledger *data.Ledger) error {
		if id > ledger.CurrentRound {
			return ErrRoundNotFound
		}
		entrants, err := tx.Entrants(id)
		if err != nil {
			return err
		}
		meta, err := tx.RoundMeta(id)
		if err != nil {
			return err
		}
		round = &data.Round{
			ID:       id,
			Entrants: entrants,
			Failed:   meta.Failed,
			Winner:   meta.Winner,
		}
		return nil
	})

	return round, err
}

func (r *Raffle) Entrants(id uint64) ([]string, error) {
	round, err := r.Round(id)
	if err != nil {
		return nil, err
	}

	return round.Entrants, nil
}

func (r *Raffle) EntrantCount(id uint64) (uint64, error) {
	var n uint64
	err := r.view(func(tx storage.Tx, ledger *data.Ledger) error {
		if id > ledger.CurrentRound {
			return ErrRoundNotFound
		}
		var err error
		n, err = tx.EntrantCount(id)
		return err
	})

	return n, err
}

// EntryCount - returns how many entries participant holds in a round.
// After a refund from a failed round the count reads zero.
func (r *Raffle) EntryCount(id uint64, participant string) (uint64, error) {
	var n uint64
	err := r.view(func(tx storage.Tx, ledger *data.Ledger) error {
		if id > ledger.CurrentRound {
			return ErrRoundNotFound
		}
		var err error
		n, err = tx.EntryCount(id, participant)
		return err
	})

	return n, err
}

// Winner - returns the winner record of a round or nil if there is none
func (r *Raffle) Winner(id uint64) (*data.WinnerRecord, error) {
	round, err := r.Round(id)
	if err != nil {
		return nil, err
	}

	return round.Winner, nil
}

func (r *Raffle) RoundFailed(id uint64) (bool, error) {
	round, err := r.Round(id)
	if err != nil {
		return false, err
	}

	return round.Failed, nil
}

// RefundTotal - returns the total refundable value of a failed round, zero otherwise
func (r *Raffle) RefundTotal(id uint64) (*big.Int, error) {
	round, err := r.Round(id)
	if err != nil {
		return nil, err
	}
	if !round.Failed {
		return big.NewInt(0), nil
	}

	return refundOf(r.cfg.EntranceFee, uint64(len(round.Entrants))), nil
}

// Info - returns a snapshot of the raffle
func (r *Raffle) Info() (*data.RaffleInfo, error) {
	info := &data.RaffleInfo{}
	err := r.view(func(tx storage.Tx, ledger *data.Ledger) error {
		n, err := tx.EntrantCount(ledger.CurrentRound)
		if err != nil {
			return err
		}
		interval := int64(r.cfg.Interval / time.Second)
		*info = data.RaffleInfo{
			Round:         ledger.CurrentRound,
			State:         ledger.State,
			StateName:     ledger.State.String(),
			EntranceFee:   copyInt(r.cfg.EntranceFee),
			MinimumPayout: copyInt(r.cfg.MinimumPayout),
			Interval:      interval,
			OpenedAt:      ledger.OpenedAt,
			Deadline:      ledger.OpenedAt + interval,
			Entrants:      n,
			Pool:          poolValue(r.cfg.EntranceFee, n),
			FeeBalance:    copyInt(ledger.FeeBalance),
			GasReserve:    copyInt(ledger.GasReserve),
			Withdrawable:  withdrawable(ledger),
			Balance:       copyInt(ledger.Balance),
			Owner:         ledger.Owner,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}
