package sqlite

import (
	"context"
	"encoding/json"

	"libris/internal/domain/repository"
	"libris/internal/errors"

	"gorm.io/gorm"
)

// kv wraps the record table with typed JSON access. All repositories in this
// package are built on it.
type kv struct {
	db *gorm.DB
}

// getJSON loads and decodes the value at key into out. Returns
// repository.ErrNotFound when the key is absent.
func (s kv) getJSON(ctx context.Context, key string, out any) error {
	var rec Record
	if err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrNotFound
		}

		return errors.Wrapf(err, "failed to read %q", key)
	}

	if err := json.Unmarshal([]byte(rec.Value), out); err != nil {
		return errors.Wrapf(err, "failed to decode %q", key)
	}

	return nil
}

// putJSON encodes value and fully replaces the row at key.
func (s kv) putJSON(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %q", key)
	}

	rec := Record{Key: key, Value: string(payload)}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return errors.Wrapf(err, "failed to write %q", key)
	}

	return nil
}

// delete removes the row at key. Deleting an absent key is not an error.
func (s kv) delete(ctx context.Context, keys ...string) error {
	if err := s.db.WithContext(ctx).Delete(&Record{}, "key IN ?", keys).Error; err != nil {
		return errors.Wrap(err, "failed to delete records")
	}

	return nil
}

// listKeys returns all keys with the given prefix, oldest write first.
func (s kv) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&Record{}).
		Where("key LIKE ?", prefix+"%").
		Order("updated_at").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list keys with prefix %q", prefix)
	}

	return keys, nil
}
