package raffle

import (
	"context"
	"math/big"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/storage"
)

// Store is the durable round registry and ledger
type Store interface {
	Update(fn func(tx storage.Tx) error) error
	View(fn func(tx storage.Tx) error) error
}

// Transferer moves value out of custody
type Transferer interface {
	Transfer(ctx context.Context, to string, amount *big.Int) error
}

// RandomnessConsumer receives the answer to a randomness request. The raffle
// hands its consumer only to the coordinator it was created with.
type RandomnessConsumer interface {
	FulfillRandomWords(ctx context.Context, requestID uint64, words []*big.Int) error
}

// Coordinator is the randomness provider
type Coordinator interface {
	AddConsumer(subscriptionID uint64, consumer RandomnessConsumer) error
	RequestRandomWords(ctx context.Context, req data.RandomnessRequest) (uint64, error)
}

// EventSink receives events once the change that produced them is committed
type EventSink interface {
	Publish(ev data.Event)
}

// SinkFunc adapts a function to an EventSink
type SinkFunc func(ev data.Event)

func (f SinkFunc) Publish(ev data.Event) {
	f(ev)
}

// MultiSink publishes every event to all of its sinks in order
type MultiSink []EventSink

func (m MultiSink) Publish(ev data.Event) {
	for _, sink := range m {
		if sink != nil {
			sink.Publish(ev)
		}
	}
}
