package storage

import (
	"fmt"
	"sort"
	"time"

	"accordion/internal/content"
	"accordion/internal/models"

	"go.etcd.io/bbolt"
)

var (
	bucketEntries = []byte("entries")
	bucketFiles   = []byte("files")
)

type BboltStorage struct {
	db *bbolt.DB
}

func NewBboltStorage(path string) (*BboltStorage, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketEntries, bucketFiles} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BboltStorage{db: db}, nil
}

func (s *BboltStorage) Close() error {
	return s.db.Close()
}

// UpsertEntry stores a new or updated FAQ entry.
func (s *BboltStorage) UpsertEntry(entry models.Entry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putEntry(tx.Bucket(bucketEntries), toDBEntry(entry))
	})
}

// GetEntry returns the entry with the given ID or models.ErrNotFound.
func (s *BboltStorage) GetEntry(id string) (models.Entry, error) {
	var entry models.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEntries).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("entry %s: %w", id, models.ErrNotFound)
		}
		var dbEntry DBEntry
		if err := dbEntry.UnmarshalBinary(data); err != nil {
			return fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		entry = fromDBEntry(dbEntry)
		return nil
	})
	return entry, err
}

// ListEntries returns all entries in display order.
func (s *BboltStorage) ListEntries() ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		dbEntries, err := loadEntries(tx.Bucket(bucketEntries))
		if err != nil {
			return err
		}
		entries = make([]models.Entry, 0, len(dbEntries))
		for _, e := range dbEntries {
			entries = append(entries, fromDBEntry(e))
		}
		return nil
	})
	return entries, err
}

// DeleteEntry removes an entry and closes the gap it leaves in the ordering.
func (s *BboltStorage) DeleteEntry(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("entry %s: %w", id, models.ErrNotFound)
		}
		if err := b.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}

		remaining, err := loadEntries(b)
		if err != nil {
			return err
		}
		for i := range remaining {
			if remaining[i].Position == i {
				continue
			}
			remaining[i].Position = i
			if err := putEntry(b, remaining[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReorderEntries assigns positions following ids. ids must contain every
// stored entry ID exactly once, otherwise models.ErrInvalidOrder is returned
// and nothing changes.
func (s *BboltStorage) ReorderEntries(ids []string, updatedAt int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if countKeys(b) != len(ids) {
			return models.ErrInvalidOrder
		}

		seen := make(map[string]bool, len(ids))
		for i, id := range ids {
			if seen[id] {
				return models.ErrInvalidOrder
			}
			seen[id] = true

			data := b.Get([]byte(id))
			if data == nil {
				return fmt.Errorf("entry %s: %w", id, models.ErrInvalidOrder)
			}
			var dbEntry DBEntry
			if err := dbEntry.UnmarshalBinary(data); err != nil {
				return fmt.Errorf("failed to unmarshal entry: %w", err)
			}
			if dbEntry.Position == i {
				continue
			}
			dbEntry.Position = i
			dbEntry.UpdatedAt = updatedAt
			if err := putEntry(b, dbEntry); err != nil {
				return err
			}
		}
		return nil
	})
}

func countKeys(b *bbolt.Bucket) int {
	n := 0
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		n++
	}
	return n
}

func putEntry(b *bbolt.Bucket, e DBEntry) error {
	data, err := e.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	return b.Put(e.Key(), data)
}

func loadEntries(b *bbolt.Bucket) ([]DBEntry, error) {
	var entries []DBEntry
	err := b.ForEach(func(k, v []byte) error {
		var e DBEntry
		if err := e.UnmarshalBinary(v); err != nil {
			return fmt.Errorf("corrupt entry %s: %w", string(k), err)
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})
	return entries, nil
}

func toDBEntry(e models.Entry) DBEntry {
	return DBEntry{
		ID:        e.ID,
		Question:  e.Question,
		Answer:    e.Answer,
		Format:    string(e.Format),
		Position:  e.Position,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func fromDBEntry(e DBEntry) models.Entry {
	return models.Entry{
		ID:        e.ID,
		Question:  e.Question,
		Answer:    e.Answer,
		Format:    content.Format(e.Format),
		Position:  e.Position,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
