package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/big"
	"time"

	"github.com/DrDelphi/EgldRaffle/data"
	"github.com/DrDelphi/EgldRaffle/raffle"
	crypto "github.com/ElrondNetwork/elrond-go-crypto"
	"github.com/ElrondNetwork/elrond-go-crypto/signing"
	"github.com/ElrondNetwork/elrond-go-crypto/signing/ed25519"
	"github.com/ElrondNetwork/elrond-go-crypto/signing/ed25519/singlesig"
	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/algorand/go-deadlock"
)

var log = logger.GetOrCreate("oracle")

var (
	errConsumerExists  = errors.New("subscription already has a consumer")
	errNoConsumer      = errors.New("no consumer for subscription")
	errNoWords         = errors.New("at least one word must be requested")
	errInvalidProof    = errors.New("invalid randomness proof")
	errUnknownResponse = errors.New("words do not match proof")
)

type pending struct {
	id      uint64
	req     data.RandomnessRequest
	waited  uint16
	message []byte
}

// LocalCoordinator is an in-process randomness coordinator for development
// and tests. Ed25519 signatures are deterministic, so the words derived from
// the signature over a request can be checked by anyone holding the public key.
type LocalCoordinator struct {
	mut       deadlock.Mutex
	signer    singlesig.Ed25519Signer
	privKey   crypto.PrivateKey
	pubKey    crypto.PublicKey
	consumers map[uint64]raffle.RandomnessConsumer
	queue     []*pending
	proofs    map[uint64][]byte
	lastID    uint64
}

// NewLocalCoordinator - creates a coordinator signing with the given ed25519 private key
func NewLocalCoordinator(privateKey []byte) (*LocalCoordinator, error) {
	keyGen := signing.NewKeyGenerator(ed25519.NewEd25519())
	privKey, err := keyGen.PrivateKeyFromByteArray(privateKey)
	if err != nil {
		log.Error("can not load coordinator key", "error", err)
		return nil, err
	}

	return &LocalCoordinator{
		privKey:   privKey,
		pubKey:    privKey.GeneratePublic(),
		consumers: make(map[uint64]raffle.RandomnessConsumer),
		proofs:    make(map[uint64][]byte),
	}, nil
}

// PublicKey - returns the key the randomness proofs verify against
func (c *LocalCoordinator) PublicKey() []byte {
	b, _ := c.pubKey.ToByteArray()
	return b
}

func (c *LocalCoordinator) AddConsumer(subscriptionID uint64, consumer raffle.RandomnessConsumer) error {
	c.mut.Lock()
	defer c.mut.Unlock()

	if _, ok := c.consumers[subscriptionID]; ok {
		return errConsumerExists
	}
	c.consumers[subscriptionID] = consumer

	return nil
}

// RequestRandomWords - queues a request. It never calls the consumer back
// synchronously.
func (c *LocalCoordinator) RequestRandomWords(_ context.Context, req data.RandomnessRequest) (uint64, error) {
	if req.NumWords == 0 {
		return 0, errNoWords
	}

	c.mut.Lock()
	defer c.mut.Unlock()

	if _, ok := c.consumers[req.SubscriptionID]; !ok {
		return 0, errNoConsumer
	}

	c.lastID++
	c.queue = append(c.queue, &pending{
		id:      c.lastID,
		req:     req,
		message: requestMessage(req.KeyHash, req.SubscriptionID, c.lastID),
	})
	log.Debug("randomness requested", "request", c.lastID, "subscription", req.SubscriptionID, "words", req.NumWords)

	return c.lastID, nil
}

// Pending - returns the number of requests waiting for fulfillment
func (c *LocalCoordinator) Pending() int {
	c.mut.Lock()
	defer c.mut.Unlock()

	return len(c.queue)
}

// Proof - returns the signature the words of a fulfilled request derive from
func (c *LocalCoordinator) Proof(requestID uint64) ([]byte, bool) {
	c.mut.Lock()
	defer c.mut.Unlock()

	proof, ok := c.proofs[requestID]
	return proof, ok
}

// FulfillNext - answers the oldest pending request. It reports false if the
// queue was empty. Each request is delivered exactly once, even if the
// consumer rejects it.
func (c *LocalCoordinator) FulfillNext(ctx context.Context) (bool, error) {
	c.mut.Lock()
	if len(c.queue) == 0 {
		c.mut.Unlock()
		return false, nil
	}
	p := c.queue[0]
	c.queue = c.queue[1:]
	c.mut.Unlock()

	return true, c.fulfill(ctx, p)
}

// FulfillAll - answers every pending request and returns the first error
func (c *LocalCoordinator) FulfillAll(ctx context.Context) error {
	var first error
	for {
		ok, err := c.FulfillNext(ctx)
		if !ok {
			return first
		}
		if err != nil && first == nil {
			first = err
		}
	}
}

// Run - every period, ages pending requests and answers those that waited
// their requested confirmations. It returns when ctx is done.
func (c *LocalCoordinator) Run(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range c.ripe() {
				if err := c.fulfill(ctx, p); err != nil {
					log.Warn("fulfillment failed", "request", p.id, "error", err)
				}
			}
		}
	}
}

func (c *LocalCoordinator) ripe() []*pending {
	c.mut.Lock()
	defer c.mut.Unlock()

	ready := make([]*pending, 0)
	waiting := c.queue[:0]
	for _, p := range c.queue {
		p.waited++
		if p.waited > p.req.Confirmations {
			ready = append(ready, p)
			continue
		}
		waiting = append(waiting, p)
	}
	c.queue = waiting

	return ready
}

func (c *LocalCoordinator) fulfill(ctx context.Context, p *pending) error {
	sig, err := c.signer.Sign(c.privKey, p.message)
	if err != nil {
		log.Error("can not sign request", "request", p.id, "error", err)
		return err
	}

	c.mut.Lock()
	c.proofs[p.id] = sig
	consumer := c.consumers[p.req.SubscriptionID]
	c.mut.Unlock()

	words := DeriveWords(sig, p.req.NumWords)
	log.Debug("fulfilling randomness", "request", p.id, "words", len(words))

	return consumer.FulfillRandomWords(ctx, p.id, words)
}

// DeriveWords - expands a proof into n random words: sha256(proof || i)
func DeriveWords(proof []byte, n uint32) []*big.Int {
	words := make([]*big.Int, n)
	idx := make([]byte, 4)
	for i := uint32(0); i < n; i++ {
		binary.BigEndian.PutUint32(idx, i)
		h := sha256.New()
		h.Write(proof)
		h.Write(idx)
		words[i] = new(big.Int).SetBytes(h.Sum(nil))
	}

	return words
}

// VerifyWords - checks that words were produced by the holder of pubKey for
// the given request
func VerifyWords(pubKey []byte, keyHash string, subscriptionID uint64, requestID uint64, proof []byte, words []*big.Int) error {
	keyGen := signing.NewKeyGenerator(ed25519.NewEd25519())
	pk, err := keyGen.PublicKeyFromByteArray(pubKey)
	if err != nil {
		return err
	}

	signer := singlesig.Ed25519Signer{}
	if err := signer.Verify(pk, requestMessage(keyHash, subscriptionID, requestID), proof); err != nil {
		return errInvalidProof
	}

	expected := DeriveWords(proof, uint32(len(words)))
	for i := range words {
		if words[i] == nil || words[i].Cmp(expected[i]) != 0 {
			return errUnknownResponse
		}
	}

	return nil
}

func requestMessage(keyHash string, subscriptionID uint64, requestID uint64) []byte {
	msg := make([]byte, 16, 16+len(keyHash))
	binary.BigEndian.PutUint64(msg[:8], subscriptionID)
	binary.BigEndian.PutUint64(msg[8:], requestID)

	return append(msg, keyHash...)
}
