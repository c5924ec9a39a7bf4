package models

import "time"

// ReadingPosition is the per-user pointer into a corpus. One record per
// user per corpus, created with defaults on first access and overwritten
// as a whole on every navigation or assignment advance. Never deleted;
// reset writes the same default record used for first-time creation.
type ReadingPosition struct {
	UserID        string    `json:"user_id" gorm:"type:uuid;not null;primaryKey"`
	Corpus        string    `json:"corpus" gorm:"size:32;not null;primaryKey"`
	CurrentIndex  int64     `json:"current_index" gorm:"default:0"`
	SectionNumber int       `json:"section_number" gorm:"default:1"`
	SectionName   string    `json:"section_name"`
	Chapter       int       `json:"chapter" gorm:"default:1"`
	// CachedReadCount is the secondary read-count source, reconciled
	// best-effort against the read_events set. Never authoritative when
	// events exist.
	CachedReadCount int64     `json:"cached_read_count" gorm:"default:0"`
	PercentComplete float64   `json:"percent_complete" gorm:"default:0"`
	LastVisitedAt   time.Time `json:"last_visited_at"`
}

func (ReadingPosition) TableName() string {
	return "reading_positions"
}
