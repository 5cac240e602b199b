package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewEntry(t *testing.T) {
	ts := time.Date(2024, 6, 15, 9, 0, 0, 0, time.Local)

	e := NewEntry(ts, "What made you smile?", CategoryGratitude)

	assert.NotEmpty(t, e.Id)
	assert.True(t, e.Timestamp.Equal(ts))
	assert.Equal(t, "What made you smile?", e.PromptText)
	assert.Equal(t, CategoryGratitude, e.Category)
	assert.Nil(t, e.LastRetrieved)

	other := NewEntry(ts, "What made you smile?", CategoryGratitude)
	assert.NotEqual(t, e.Id, other.Id)
}

func TestRetrievedAfter(t *testing.T) {
	earlier := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	later := earlier.AddDate(0, 0, 10)

	tests := []struct {
		name string
		a    *time.Time
		b    *time.Time
		want bool
	}{
		{"both nil", nil, nil, false},
		{"a set, b nil", &earlier, nil, true},
		{"a nil, b set", nil, &earlier, false},
		{"a later", &later, &earlier, true},
		{"a earlier", &earlier, &later, false},
		{"equal", &earlier, &earlier, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Entry{Id: "a", LastRetrieved: tt.a}
			b := &Entry{Id: "b", LastRetrieved: tt.b}
			assert.Equal(t, tt.want, a.RetrievedAfter(b))
		})
	}
}
