package tokenstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var tokensBucket = []byte("tokens")

// BoltBackend stores entries in a bbolt database.
type BoltBackend struct {
	db *bbolt.DB
}

var _ Backend = (*BoltBackend)(nil)

// OpenBolt opens (creating if needed) the database at path.
func OpenBolt(path string, options *bbolt.Options) (*BoltBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating token dir: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("opening token db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tokensBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing token db: %w", err)
	}
	return &BoltBackend{db: db}, nil
}

// Close closes the underlying database.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}

func (b *BoltBackend) Read(userID string) (*Entry, error) {
	var entry Entry
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(tokensBucket).Get([]byte(userID))
		if data == nil {
			return fmt.Errorf("%s: %w", userID, ErrNotFound)
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (b *BoltBackend) Write(entry *Entry) error {
	if entry.UserID == "" {
		return fmt.Errorf("writing tokens: empty user id")
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding tokens: %w", err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(tokensBucket).Put([]byte(entry.UserID), data)
	})
}

func (b *BoltBackend) Delete(userID string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(tokensBucket).Delete([]byte(userID))
	})
}

func (b *BoltBackend) List() ([]string, error) {
	var ids []string
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(tokensBucket).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}
