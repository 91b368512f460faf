package storage

import (
	"errors"
	"time"

	"task-secretary-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KV is a string-keyed store holding one serialized value per key.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// GormKV keeps entries in the kv_entries table.
type GormKV struct {
	db *gorm.DB
}

func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

func (s *GormKV) Get(key string) (string, bool, error) {
	var e models.KVEntry
	err := s.db.Where(&models.KVEntry{Key: key}).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

func (s *GormKV) Set(key, value string) error {
	e := models.KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

// ScopedKey namespaces a store key per user.
func ScopedKey(scope, key string) string {
	if scope == "" {
		return key
	}
	return scope + ":" + key
}
