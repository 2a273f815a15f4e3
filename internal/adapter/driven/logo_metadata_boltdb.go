package driven

import (
	"context"
	"encoding/json"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/alorle/addon-playlist/internal/logo"
)

const (
	logosBucket = "logos"
)

// LogoMetadataBoltDBRepository implements the LogoMetadataRepository port using BoltDB.
type LogoMetadataBoltDBRepository struct {
	db *bbolt.DB
}

// NewLogoMetadataBoltDBRepository creates a new BoltDB-backed logo metadata repository.
// It initializes the required bucket if it doesn't exist.
func NewLogoMetadataBoltDBRepository(db *bbolt.DB) (*LogoMetadataBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(logosBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &LogoMetadataBoltDBRepository{db: db}, nil
}

// Get retrieves an entry by its cache key.
func (r *LogoMetadataBoltDBRepository) Get(ctx context.Context, key string) (logo.Entry, error) {
	if err := ctx.Err(); err != nil {
		return logo.Entry{}, err
	}

	var e logo.Entry

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(logosBucket))
		if bucket == nil {
			return errors.New("logos bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return logo.ErrEntryNotFound
		}

		var dto logoEntryDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			return err
		}

		reconstructed, err := dtoToLogoEntry(dto)
		if err != nil {
			return err
		}

		e = reconstructed
		return nil
	})

	return e, err
}

// Put stores an entry, replacing any previous one with the same key.
func (r *LogoMetadataBoltDBRepository) Put(ctx context.Context, e logo.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(logosBucket))
		if bucket == nil {
			return errors.New("logos bucket not found")
		}

		data, err := json.Marshal(logoEntryToDTO(e))
		if err != nil {
			return err
		}

		return bucket.Put([]byte(e.Key), data)
	})
}

// Delete removes an entry. Missing keys are ignored.
func (r *LogoMetadataBoltDBRepository) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(logosBucket))
		if bucket == nil {
			return errors.New("logos bucket not found")
		}
		return bucket.Delete([]byte(key))
	})
}

// FindAll retrieves all entries in key order.
func (r *LogoMetadataBoltDBRepository) FindAll(ctx context.Context) ([]logo.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := []logo.Entry{}

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(logosBucket))
		if bucket == nil {
			return errors.New("logos bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			var dto logoEntryDTO
			if err := json.Unmarshal(v, &dto); err != nil {
				return err
			}

			e, err := dtoToLogoEntry(dto)
			if err != nil {
				// Skip rows written by an older, incompatible version.
				return nil
			}

			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Ping checks if the BoltDB database is accessible and operational.
func (r *LogoMetadataBoltDBRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(logosBucket)) == nil {
			return errors.New("logos bucket not found")
		}
		return nil
	})
}
