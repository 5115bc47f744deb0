package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"veostudio/internal/models"
)

// KVRecordRepository stores named records of serialized client state.
type KVRecordRepository interface {
	Get(ctx context.Context, key string) (*models.KVRecord, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type kvRecordRepository struct {
	db *gorm.DB
}

func NewKVRecordRepository(db *gorm.DB) KVRecordRepository {
	return &kvRecordRepository{db: db}
}

// Get returns nil, nil when the record does not exist.
func (r *kvRecordRepository) Get(ctx context.Context, key string) (*models.KVRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("key is required")
	}
	var rec models.KVRecord
	if err := r.db.WithContext(ctx).Where("name = ?", key).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *kvRecordRepository) Put(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("key is required")
	}
	rec := models.KVRecord{Name: key, Value: value, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (r *kvRecordRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(key)).Delete(&models.KVRecord{}).Error
}
