package models

import "time"

// DayFormat is the calendar-day key for daily assignments and streak
// grouping. Days are local to the reading environment, not UTC.
const DayFormat = "2006-01-02"

// DailyAssignment binds "today's verse" for one user, one corpus, one
// calendar day. Created the first time the user asks for today's verse,
// flipped from unread to read at most once. A new day always starts
// with no assignment; Read state never carries over.
type DailyAssignment struct {
	UserID        string `json:"user_id" gorm:"type:uuid;not null;primaryKey"`
	Corpus        string `json:"corpus" gorm:"size:32;not null;primaryKey"`
	Date          string `json:"date" gorm:"size:10;not null;primaryKey"`
	VerseID       string `json:"verse_id" gorm:"type:uuid;not null"`
	VerseIndex    int64  `json:"verse_index" gorm:"not null"`
	SectionNumber int    `json:"section_number"`
	SectionName   string `json:"section_name"`
	Chapter       int    `json:"chapter"`
	IsRead        bool   `json:"is_read" gorm:"default:false"`
	// IsRestart is true only on the assignment that wraps the corpus
	// back to index 0 (corpus-completion event).
	IsRestart bool      `json:"is_restart" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (DailyAssignment) TableName() string {
	return "daily_assignments"
}

// TodayVerse is what the scheduler hands back to the presentation layer.
// IsFallback marks a verse chosen at random because the user had no
// resolvable position, so the UI can tell "assigned" from "fallback".
type TodayVerse struct {
	Verse      *VerseRecord `json:"verse"`
	VerseIndex int64        `json:"verse_index"`
	IsRead     bool         `json:"is_read"`
	IsRestart  bool         `json:"is_restart"`
	IsFallback bool         `json:"is_fallback"`
}

// ProgressSummary is the statistics bundle for one user and corpus.
type ProgressSummary struct {
	ReadCount     int64     `json:"read_count"`
	TotalCount    int64     `json:"total_count"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	LastReadAt    time.Time `json:"last_read_at"`
}
