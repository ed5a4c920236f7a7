package storage

import (
	"fmt"

	"accordion/internal/models"

	"go.etcd.io/bbolt"
)

func (s *BboltStorage) UpsertFileMetadata(meta FileMetadata) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketFiles)
		data, err := meta.MarshalBinary()
		if err != nil {
			return fmt.Errorf("failed to marshal file metadata: %w", err)
		}
		return b.Put(meta.Key(), data)
	})
}

func (s *BboltStorage) GetFileMetadata(id string) (FileMetadata, error) {
	var meta FileMetadata
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketFiles)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("file metadata %s: %w", id, models.ErrNotFound)
		}
		return meta.UnmarshalBinary(data)
	})
	return meta, err
}
