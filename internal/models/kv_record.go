package models

import "time"

// KVRecord is a named blob of serialized client state.
type KVRecord struct {
	Name      string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
