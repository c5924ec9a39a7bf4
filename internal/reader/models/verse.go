package models

import "fmt"

// VerseRecord is one verse of a corpus. Records are written once at
// corpus-load time and never mutated by the engine. The tuple
// (SectionNumber, Chapter, VerseNumber) is unique within a corpus and
// defines the total order; the global index of a verse is its rank
// under ascending order of that tuple.
type VerseRecord struct {
	ID            string `json:"id" gorm:"type:uuid;primaryKey"`
	Corpus        string `json:"corpus" gorm:"size:32;not null;uniqueIndex:idx_corpus_order,priority:1"`
	SectionNumber int    `json:"section_number" gorm:"not null;uniqueIndex:idx_corpus_order,priority:2"`
	SectionName   string `json:"section_name"`
	Chapter       int    `json:"chapter" gorm:"not null;uniqueIndex:idx_corpus_order,priority:3"`
	VerseNumber   int    `json:"verse_number" gorm:"not null;uniqueIndex:idx_corpus_order,priority:4"`
	PrimaryText   string `json:"primary_text" gorm:"type:text"`
	SecondaryText string `json:"secondary_text" gorm:"type:text"`
	Reference     string `json:"reference"`
}

func (VerseRecord) TableName() string {
	return "verses"
}

// OrderTuple returns the three-key sort tuple used as a pagination cursor.
func (v *VerseRecord) OrderTuple() (int, int, int) {
	return v.SectionNumber, v.Chapter, v.VerseNumber
}

// Before reports whether v sorts strictly before other in corpus order.
func (v *VerseRecord) Before(other *VerseRecord) bool {
	if v.SectionNumber != other.SectionNumber {
		return v.SectionNumber < other.SectionNumber
	}
	if v.Chapter != other.Chapter {
		return v.Chapter < other.Chapter
	}
	return v.VerseNumber < other.VerseNumber
}

// Normalize substitutes documented defaults for missing required fields so
// that one malformed record cannot block traversal of a whole batch:
// ordering keys below 1 become 1, a blank section name becomes "Unknown",
// a blank reference is synthesized from the numeric tuple.
func (v *VerseRecord) Normalize() {
	if v.SectionNumber < 1 {
		v.SectionNumber = 1
	}
	if v.Chapter < 1 {
		v.Chapter = 1
	}
	if v.VerseNumber < 1 {
		v.VerseNumber = 1
	}
	if v.SectionName == "" {
		v.SectionName = "Unknown"
	}
	if v.Reference == "" {
		v.Reference = fmt.Sprintf("%s %d:%d", v.SectionName, v.Chapter, v.VerseNumber)
	}
}
