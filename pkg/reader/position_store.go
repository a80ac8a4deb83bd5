package reader

import (
	"fmt"
	"strconv"
	"sync"

	bolt "go.etcd.io/bbolt"
)

// bucketOffsets maps log path -> byte offset of the last consumed line.
var bucketOffsets = []byte("log_offsets")

// boltPositionStore implements PositionStore on a BoltDB database, so
// offsets survive restarts.
type boltPositionStore struct {
	db *bolt.DB
}

// NewBoltPositionStore creates a BoltDB-backed position store.
//
// Parameters:
//   - db: Open BoltDB database instance
//
// Returns:
//   - Configured PositionStore
//   - Error if the bucket cannot be created
func NewBoltPositionStore(db *bolt.DB) (PositionStore, error) {
	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketOffsets)
		return createErr
	}); err != nil {
		return nil, fmt.Errorf("failed to create offsets bucket: %w", err)
	}

	return &boltPositionStore{db: db}, nil
}

// GetPosition implements PositionStore.GetPosition.
func (s *boltPositionStore) GetPosition(path string) (int64, error) {
	var offset int64

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketOffsets).Get([]byte(path))
		if data == nil {
			return nil
		}

		parsed, parseErr := strconv.ParseInt(string(data), 10, 64)
		if parseErr != nil {
			return fmt.Errorf("corrupt offset for %s: %w", path, parseErr)
		}
		offset = parsed
		return nil
	})
	if err != nil {
		return 0, err
	}

	return offset, nil
}

// SetPosition implements PositionStore.SetPosition.
func (s *boltPositionStore) SetPosition(path string, offset int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		value := strconv.FormatInt(offset, 10)
		if err := tx.Bucket(bucketOffsets).Put([]byte(path), []byte(value)); err != nil {
			return fmt.Errorf("failed to store offset: %w", err)
		}
		return nil
	})
}

// memoryPositionStore implements PositionStore with an in-memory map.
// Offsets are lost on restart; the next run reparses from scratch.
type memoryPositionStore struct {
	mu      sync.RWMutex
	offsets map[string]int64
}

// NewMemoryPositionStore creates an in-memory position store.
func NewMemoryPositionStore() PositionStore {
	return &memoryPositionStore{offsets: make(map[string]int64)}
}

// GetPosition implements PositionStore.GetPosition.
func (s *memoryPositionStore) GetPosition(path string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offsets[path], nil
}

// SetPosition implements PositionStore.SetPosition.
func (s *memoryPositionStore) SetPosition(path string, offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offsets[path] = offset
	return nil
}
