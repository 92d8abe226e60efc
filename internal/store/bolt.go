package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/telecare-labs/offsync/models"
)

// BoltDB bucket names. The index bucket keeps actions ordered by enqueue
// time so listing never has to sort.
var (
	bucketActions     = []byte("actions")
	bucketActionIndex = []byte("actions_by_time")
	bucketConflicts   = []byte("conflicts")
	bucketMeta        = []byte("meta")
)

const keySyncState = "sync_state"

// BoltStorage is the bbolt-backed implementation of all three client
// repositories. Every mutation runs inside a single bolt update transaction,
// which gives the all-or-nothing guarantee for free.
type BoltStorage struct {
	db *bolt.DB
}

// NewBoltStorage opens the bolt file at path and creates the buckets.
func NewBoltStorage(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &BoltStorage{db: db}
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database file.
func (s *BoltStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStorage) initBuckets() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketActions, bucketActionIndex, bucketConflicts, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

// boltAction is the stored form of a QueuedAction: the payload travels as its
// schema-versioned envelope.
type boltAction struct {
	ID              string               `json:"id"`
	Kind            models.ActionKind    `json:"kind"`
	Payload         json.RawMessage      `json:"payload"`
	ExpectedVersion int64                `json:"expected_version"`
	EnqueuedAt      time.Time            `json:"enqueued_at"`
	Vector          models.VersionVector `json:"vector,omitempty"`
	RetryCount      int                  `json:"retry_count"`
	Status          models.ActionStatus  `json:"status"`
}

func indexKey(enqueuedAt time.Time, id string) []byte {
	key := make([]byte, 8, 8+len(id))
	binary.BigEndian.PutUint64(key, uint64(enqueuedAt.UnixNano()))
	return append(key, id...)
}

func encodeBoltAction(action models.QueuedAction) ([]byte, error) {
	payload, err := models.EncodePayload(action.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload for action %s: %w", action.ID, err)
	}

	raw, err := json.Marshal(boltAction{
		ID:              action.ID,
		Kind:            action.Kind,
		Payload:         payload,
		ExpectedVersion: action.ExpectedVersion,
		EnqueuedAt:      action.EnqueuedAt.UTC(),
		Vector:          action.Vector,
		RetryCount:      action.RetryCount,
		Status:          action.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("encode action %s: %w", action.ID, err)
	}

	return raw, nil
}

func decodeBoltAction(raw []byte) (models.QueuedAction, error) {
	var stored boltAction
	if err := json.Unmarshal(raw, &stored); err != nil {
		return models.QueuedAction{}, fmt.Errorf("decode stored action: %w", err)
	}

	payload, err := models.DecodePayload(stored.Payload)
	if err != nil {
		return models.QueuedAction{}, fmt.Errorf("decode payload of action %s: %w", stored.ID, err)
	}

	return models.QueuedAction{
		ID:              stored.ID,
		Kind:            stored.Kind,
		Payload:         payload,
		ExpectedVersion: stored.ExpectedVersion,
		EnqueuedAt:      stored.EnqueuedAt.UTC(),
		Vector:          stored.Vector,
		RetryCount:      stored.RetryCount,
		Status:          stored.Status,
	}, nil
}

func (s *BoltStorage) SaveAction(ctx context.Context, action models.QueuedAction) error {
	raw, err := encodeBoltAction(action)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketActions).Put([]byte(action.ID), raw); err != nil {
			return fmt.Errorf("failed to save action %s: %w", action.ID, err)
		}
		if err := tx.Bucket(bucketActionIndex).Put(indexKey(action.EnqueuedAt, action.ID), []byte(action.ID)); err != nil {
			return fmt.Errorf("failed to index action %s: %w", action.ID, err)
		}
		return nil
	})
}

func (s *BoltStorage) GetAction(ctx context.Context, id string) (models.QueuedAction, error) {
	var action models.QueuedAction

	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketActions).Get([]byte(id))
		if raw == nil {
			return ErrActionNotFound
		}

		var err error
		action, err = decodeBoltAction(raw)
		return err
	})
	if err != nil {
		return models.QueuedAction{}, err
	}

	return action, nil
}

func (s *BoltStorage) ListActions(ctx context.Context) ([]models.QueuedAction, error) {
	var actions []models.QueuedAction

	err := s.db.View(func(tx *bolt.Tx) error {
		records := tx.Bucket(bucketActions)

		return tx.Bucket(bucketActionIndex).ForEach(func(_, id []byte) error {
			raw := records.Get(id)
			if raw == nil {
				// Index entry left behind by an interrupted delete.
				return nil
			}

			action, err := decodeBoltAction(raw)
			if err != nil {
				return err
			}
			actions = append(actions, action)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}

	return actions, nil
}

func (s *BoltStorage) DeleteAction(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		records := tx.Bucket(bucketActions)

		raw := records.Get([]byte(id))
		if raw == nil {
			// Dequeue is idempotent.
			return nil
		}

		action, err := decodeBoltAction(raw)
		if err != nil {
			return err
		}

		if err = tx.Bucket(bucketActionIndex).Delete(indexKey(action.EnqueuedAt, id)); err != nil {
			return fmt.Errorf("failed to delete action index %s: %w", id, err)
		}
		if err = records.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete action %s: %w", id, err)
		}
		return nil
	})
}

func (s *BoltStorage) IncrementRetry(ctx context.Context, id string) error {
	return s.mutateAction(id, func(action *models.QueuedAction) {
		action.RetryCount++
	})
}

func (s *BoltStorage) SetStatus(ctx context.Context, id string, status models.ActionStatus) error {
	return s.mutateAction(id, func(action *models.QueuedAction) {
		action.Status = status
	})
}

// mutateAction rewrites the mutable fields of a stored action in one update
// transaction. Absent ids are a no-op.
func (s *BoltStorage) mutateAction(id string, mutate func(*models.QueuedAction)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		records := tx.Bucket(bucketActions)

		raw := records.Get([]byte(id))
		if raw == nil {
			return nil
		}

		action, err := decodeBoltAction(raw)
		if err != nil {
			return err
		}
		mutate(&action)

		updated, err := encodeBoltAction(action)
		if err != nil {
			return err
		}
		return records.Put([]byte(id), updated)
	})
}

func (s *BoltStorage) SaveConflict(ctx context.Context, record models.ConflictRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode conflict record %s: %w", record.ID, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketConflicts).Put([]byte(record.ID), raw); err != nil {
			return fmt.Errorf("failed to save conflict record %s: %w", record.ID, err)
		}
		return nil
	})
}

func (s *BoltStorage) ListConflicts(ctx context.Context, includeResolved bool) ([]models.ConflictRecord, error) {
	var records []models.ConflictRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketConflicts).ForEach(func(_, raw []byte) error {
			var record models.ConflictRecord
			if err := json.Unmarshal(raw, &record); err != nil {
				return fmt.Errorf("decode conflict record: %w", err)
			}
			if record.Resolved && !includeResolved {
				return nil
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list conflict records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].DetectedAt.Before(records[j].DetectedAt)
	})

	return records, nil
}

func (s *BoltStorage) ResolveConflict(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		conflicts := tx.Bucket(bucketConflicts)

		raw := conflicts.Get([]byte(id))
		if raw == nil {
			return ErrConflictNotFound
		}

		var record models.ConflictRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return fmt.Errorf("decode conflict record %s: %w", id, err)
		}
		record.Resolved = true

		updated, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encode conflict record %s: %w", id, err)
		}
		return conflicts.Put([]byte(id), updated)
	})
}

func (s *BoltStorage) CountUnresolvedConflicts(ctx context.Context) (int, error) {
	var count int

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketConflicts).ForEach(func(_, raw []byte) error {
			var record models.ConflictRecord
			if err := json.Unmarshal(raw, &record); err != nil {
				return fmt.Errorf("decode conflict record: %w", err)
			}
			if !record.Resolved {
				count++
			}
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count conflicts: %w", err)
	}

	return count, nil
}

func (s *BoltStorage) SaveSyncState(ctx context.Context, state models.SyncState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode sync state: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketMeta).Put([]byte(keySyncState), raw); err != nil {
			return fmt.Errorf("failed to save sync state: %w", err)
		}
		return nil
	})
}

func (s *BoltStorage) GetSyncState(ctx context.Context) (models.SyncState, error) {
	var state models.SyncState

	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketMeta).Get([]byte(keySyncState))
		if raw == nil {
			// Zero value before the first sync.
			return nil
		}
		return json.Unmarshal(raw, &state)
	})
	if err != nil {
		return models.SyncState{}, fmt.Errorf("failed to get sync state: %w", err)
	}

	return state, nil
}
