package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/classroom/internal/common"
)

// Storage is the string-keyed local storage the record lives in.
// GetItem returns nil, nil for a missing key.
type Storage interface {
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
}

// Store reads and writes one serialized Record under common.SessionStorageKey.
type Store struct {
	storage Storage
	key     string
}

func NewStore(s Storage) *Store {
	return &Store{storage: s, key: common.SessionStorageKey}
}

// Load returns the stored record, or nil when nobody is signed in.
// A value that does not decode into a valid Record is removed and
// ErrMalformedSession is returned.
func (s *Store) Load(ctx context.Context) (*Record, error) {
	raw, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	rec := &Record{}
	decodeErr := json.Unmarshal(raw, rec)
	if decodeErr == nil {
		decodeErr = rec.Validate()
	}
	if decodeErr != nil {
		if err := s.storage.RemoveItem(ctx, s.key); err != nil {
			return nil, fmt.Errorf("wipe malformed session: %w", err)
		}
		return nil, errors.Join(ErrMalformedSession, decodeErr)
	}

	return rec, nil
}

// Save validates rec and stores it, replacing any previous record.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("nil session record")
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.storage.SetItem(ctx, s.key, data); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the stored record. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.RemoveItem(ctx, s.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
