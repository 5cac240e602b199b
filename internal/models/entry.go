// Package models defines journal entry types and the derived aggregates
// computed from them.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies the prompt an entry answered.
type Category string

const (
	CategoryGratitude  Category = "gratitude"
	CategoryReflection Category = "reflection"
	CategoryGoals      Category = "goals"
	CategoryMemory     Category = "memory"
	// CategoryFreeForm is the catch-all bucket for unguided recordings.
	CategoryFreeForm Category = "free_form"
)

// Entry is one journaling submission: a prompt, an optional transcript and a
// reference to the captured media. The Id is the merge key across backends.
type Entry struct {
	Id             string
	Timestamp      time.Time
	LastRetrieved  *time.Time
	PromptText     string
	Category       Category
	Transcript     string
	MediaReference string

	IsDailyEntry   bool
	IsFollowUp     bool
	IsSuccessEntry bool
	IsUnguided     bool
}

// NewEntry constructs an entry with a fresh id and the given capture time.
func NewEntry(ts time.Time, prompt string, category Category) *Entry {
	return &Entry{
		Id:         uuid.NewString(),
		Timestamp:  ts,
		PromptText: prompt,
		Category:   category,
	}
}

// RetrievedAfter reports whether e's LastRetrieved is strictly later than
// other's, treating nil as the earliest possible time.
func (e *Entry) RetrievedAfter(other *Entry) bool {
	if e.LastRetrieved == nil {
		return false
	}
	if other.LastRetrieved == nil {
		return true
	}
	return e.LastRetrieved.After(*other.LastRetrieved)
}

// LoopingStreak is the derived activity summary for the whole journal.
// It is never persisted; it is recomputed from the merged entry set.
type LoopingStreak struct {
	CurrentStreak int
	LongestStreak int
	DistinctDays  int
}

// ActivityDay is one calendar day with at least one entry.
type ActivityDay struct {
	Day        time.Time
	EntryCount int
}

// MonthSummary aggregates activity for one calendar month.
type MonthSummary struct {
	Year       int
	Month      time.Month
	EntryCount int
	ActiveDays int
}
