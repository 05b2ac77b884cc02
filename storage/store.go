package storage

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/DrDelphi/EgldRaffle/data"
	logger "github.com/ElrondNetwork/elrond-go-logger"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"
)

var log = logger.GetOrCreate("storage")

// Tx is the view of the round registry and the ledger inside one transaction
type Tx interface {
	Ledger() (*data.Ledger, error)
	PutLedger(ledger *data.Ledger) error

	AppendEntrant(round uint64, participant string) (uint64, error)
	EntrantCount(round uint64) (uint64, error)
	Entrant(round uint64, index uint64) (string, error)
	Entrants(round uint64) ([]string, error)

	EntryCount(round uint64, participant string) (uint64, error)
	SetEntryCount(round uint64, participant string, count uint64) error

	RoundMeta(round uint64) (*data.RoundMeta, error)
	PutRoundMeta(round uint64, meta *data.RoundMeta) error
}

// BoltStore keeps the round registry and the ledger in a bbolt file.
// bbolt allows a single writer at a time, so every Update is atomic and
// totally ordered with respect to the others.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore - opens (or creates) the database at the provided path
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		log.Error("can not open database", "path", path, "error", err)
		return nil, xerrors.Errorf("open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(ledgerBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(roundsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, xerrors.Errorf("create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Update runs fn in a read-write transaction. The transaction is rolled
// back if fn returns an error.
func (s *BoltStore) Update(fn func(tx Tx) error) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

// View runs fn in a read-only transaction
func (s *BoltStore) View(fn func(tx Tx) error) error {
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

type boltTx struct {
	tx *bolt.Tx
}

func (t *boltTx) Ledger() (*data.Ledger, error) {
	raw := t.tx.Bucket(ledgerBucket).Get(ledgerKey)
	if raw == nil {
		return nil, ErrNotInitialized
	}

	ledger := &data.Ledger{}
	if err := json.Unmarshal(raw, ledger); err != nil {
		return nil, xerrors.Errorf("decode ledger: %w", err)
	}

	return ledger, nil
}

func (t *boltTx) PutLedger(ledger *data.Ledger) error {
	raw, err := json.Marshal(ledger)
	if err != nil {
		return xerrors.Errorf("encode ledger: %w", err)
	}

	return t.tx.Bucket(ledgerBucket).Put(ledgerKey, raw)
}

func (t *boltTx) AppendEntrant(round uint64, participant string) (uint64, error) {
	rb, err := t.createRound(round)
	if err != nil {
		return 0, err
	}

	entrants := rb.Bucket(entrantsBucket)
	seq, err := entrants.NextSequence()
	if err != nil {
		return 0, err
	}
	if err := entrants.Put(itob(seq-1), []byte(participant)); err != nil {
		return 0, err
	}

	return seq, nil
}

func (t *boltTx) EntrantCount(round uint64) (uint64, error) {
	rb := t.round(round)
	if rb == nil {
		return 0, nil
	}

	return rb.Bucket(entrantsBucket).Sequence(), nil
}

func (t *boltTx) Entrant(round uint64, index uint64) (string, error) {
	rb := t.round(round)
	if rb == nil {
		return "", errEntrantNotFound
	}

	raw := rb.Bucket(entrantsBucket).Get(itob(index))
	if raw == nil {
		return "", xerrors.Errorf("round %d index %d: %w", round, index, errEntrantNotFound)
	}

	return string(raw), nil
}

func (t *boltTx) Entrants(round uint64) ([]string, error) {
	entrants := make([]string, 0)
	rb := t.round(round)
	if rb == nil {
		return entrants, nil
	}

	err := rb.Bucket(entrantsBucket).ForEach(func(_, v []byte) error {
		entrants = append(entrants, string(v))
		return nil
	})

	return entrants, err
}

func (t *boltTx) EntryCount(round uint64, participant string) (uint64, error) {
	rb := t.round(round)
	if rb == nil {
		return 0, nil
	}

	raw := rb.Bucket(entriesBucket).Get([]byte(participant))
	if len(raw) != 8 {
		return 0, nil
	}

	return binary.BigEndian.Uint64(raw), nil
}

func (t *boltTx) SetEntryCount(round uint64, participant string, count uint64) error {
	rb, err := t.createRound(round)
	if err != nil {
		return err
	}

	return rb.Bucket(entriesBucket).Put([]byte(participant), itob(count))
}

func (t *boltTx) RoundMeta(round uint64) (*data.RoundMeta, error) {
	meta := &data.RoundMeta{}
	rb := t.round(round)
	if rb == nil {
		return meta, nil
	}

	raw := rb.Get(metaKey)
	if raw == nil {
		return meta, nil
	}
	if err := json.Unmarshal(raw, meta); err != nil {
		return nil, xerrors.Errorf("decode round %d: %w", round, err)
	}

	return meta, nil
}

func (t *boltTx) PutRoundMeta(round uint64, meta *data.RoundMeta) error {
	rb, err := t.createRound(round)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return xerrors.Errorf("encode round %d: %w", round, err)
	}

	return rb.Put(metaKey, raw)
}

func (t *boltTx) round(round uint64) *bolt.Bucket {
	return t.tx.Bucket(roundsBucket).Bucket(itob(round))
}

func (t *boltTx) createRound(round uint64) (*bolt.Bucket, error) {
	rb, err := t.tx.Bucket(roundsBucket).CreateBucketIfNotExists(itob(round))
	if err != nil {
		return nil, xerrors.Errorf("round %d: %w", round, err)
	}
	if _, err := rb.CreateBucketIfNotExists(entrantsBucket); err != nil {
		return nil, err
	}
	if _, err := rb.CreateBucketIfNotExists(entriesBucket); err != nil {
		return nil, err
	}

	return rb, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
