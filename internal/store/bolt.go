// Package store provides a BoltDB-backed record gateway and authenticator.
//
// All data lives in a single file. Records are kept in one sub-bucket per
// owner, so an operator can only ever see the clients, flights and payments
// stored under their own ID.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/cx-tal-miterani/travel-desk/internal/gateway"
)

var (
	ownersBucket   = []byte("owners")
	usersBucket    = []byte("users")
	emailsBucket   = []byte("emails")
	sessionsBucket = []byte("sessions")

	clientsBucket  = []byte("clients")
	flightsBucket  = []byte("flights")
	paymentsBucket = []byte("payments")
)

// Store wraps a BoltDB database
type Store struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// New opens (or creates) a BoltDB database at path and ensures the top level
// buckets exist. Sessions issued by the store are valid for ttl.
func New(path string, ttl time.Duration) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{ownersBucket, usersBucket, emailsBucket, sessionsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Close releases the database file lock
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database file is still open
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(ownersBucket) == nil {
			return fmt.Errorf("owners bucket missing")
		}
		return nil
	})
}

// view runs fn in a read transaction unless ctx is already done
func (s *Store) view(ctx context.Context, fn func(*bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

// update runs fn in a write transaction unless ctx is already done
func (s *Store) update(ctx context.Context, fn func(*bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(fn)
}

// ownerBucket returns the named bucket under ownerID, or nil if it was never written
func ownerBucket(tx *bolt.Tx, ownerID string, name []byte) *bolt.Bucket {
	owner := tx.Bucket(ownersBucket).Bucket([]byte(ownerID))
	if owner == nil {
		return nil
	}
	return owner.Bucket(name)
}

// ownerBucketForWrite creates the owner's bucket chain as needed
func ownerBucketForWrite(tx *bolt.Tx, ownerID string, name []byte) (*bolt.Bucket, error) {
	owner, err := tx.Bucket(ownersBucket).CreateBucketIfNotExists([]byte(ownerID))
	if err != nil {
		return nil, err
	}
	return owner.CreateBucketIfNotExists(name)
}

func put(b *bolt.Bucket, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}

// each decodes every value of b into a fresh T
func each[T any](b *bolt.Bucket, fn func(*T) error) error {
	if b == nil {
		return nil
	}
	return b.ForEach(func(k, v []byte) error {
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return err
		}
		return fn(&item)
	})
}

var _ gateway.Records = (*Store)(nil)
var _ gateway.Authenticator = (*Store)(nil)
