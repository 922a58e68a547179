// Package store provides the durable local key-value store that holds
// stopwatch slots and persisted application state.
package store

import (
	"errors"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"
)

const kvBucket = "kv"

var errStoreLocked = errors.New(
	"is kiroku already running? Only one instance can be active at a time",
)

// KV is the durable local key-value storage capability. Callers must treat
// a read failure as "no saved state" and fall back to defaults rather than
// aborting.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("key not found")

// Client is a BoltDB-backed KV store.
type Client struct {
	*bolt.DB
}

// NewClient opens or creates the store at dbPath and locks it.
func NewClient(dbPath string) (*Client, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		dbPath,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, errStoreLocked
		}

		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists([]byte(kvBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Client{db}, nil
}

func (c *Client) Get(key string) (string, error) {
	var value string

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(kvBucket)).Get([]byte(key))
		if b == nil {
			return ErrNotFound
		}

		value = string(b)

		return nil
	})

	return value, err
}

func (c *Client) Set(key, value string) error {
	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(kvBucket)).Put([]byte(key), []byte(value))
	})
}

func (c *Client) Remove(key string) error {
	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(kvBucket)).Delete([]byte(key))
	})
}
