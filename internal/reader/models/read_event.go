package models

import "time"

// ReadEvent records the first time a user marks a verse as read.
// Append-only: one row per user per verse, never updated or deleted.
// The distinct set of verse IDs per user is the ground truth for
// "total verses read" — counters can drift, this set cannot.
type ReadEvent struct {
	UserID  string    `json:"user_id" gorm:"type:uuid;not null;primaryKey"`
	Corpus  string    `json:"corpus" gorm:"size:32;not null;primaryKey"`
	VerseID string    `json:"verse_id" gorm:"type:uuid;not null;primaryKey"`
	ReadAt  time.Time `json:"read_at" gorm:"not null;index"`
}

func (ReadEvent) TableName() string {
	return "read_events"
}
