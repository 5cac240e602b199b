// Package history persists the small rolling record of which entries were
// resurfaced and when. Its only purpose is to avoid repeats, so loading
// fails open: a corrupt or missing file is treated as empty history rather
// than blocking resurfacing.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loopjournal/loop/internal/common"
	"github.com/loopjournal/loop/internal/logging"
)

// DefaultRetention is the rolling window records are kept for. Sixty days of
// recency penalty plus slack.
const DefaultRetention = 90 * 24 * time.Hour

// Record is one resurfacing event.
type Record struct {
	EntryId   string    `json:"entry_id"`
	ShownDate time.Time `json:"shown_date"`
}

// Cache is the append-only, trimmed resurfacing history. It is confined to a
// single owner (the journal service) and is not safe for concurrent use.
type Cache struct {
	path      string
	retention time.Duration
	log       logging.Logger
	records   []Record
}

// Load reads the history file at path. Decode failures are logged and
// replaced by empty history.
func Load(ctx context.Context, path string, retention time.Duration, log logging.Logger) *Cache {
	if retention <= 0 {
		retention = DefaultRetention
	}
	c := &Cache{path: path, retention: retention, log: log.With("component", "history")}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn(ctx, "failed to read history file, starting empty", "path", path, "error", err)
		}
		return c
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		c.log.Warn(ctx, "corrupt history file, starting empty",
			"path", path, "error", fmt.Errorf("%w: %v", common.ErrDecode, err))
		return c
	}

	c.records = records
	return c
}

// LastShown returns the most recent recorded showing of the entry.
func (c *Cache) LastShown(id string) (time.Time, bool) {
	var best time.Time
	found := false
	for _, r := range c.records {
		if r.EntryId == id && (!found || r.ShownDate.After(best)) {
			best = r.ShownDate
			found = true
		}
	}
	return best, found
}

// Append records a resurfacing event, trims everything outside the retention
// window relative to shown, and persists the file.
func (c *Cache) Append(id string, shown time.Time) error {
	cutoff := shown.Add(-c.retention)

	kept := c.records[:0]
	for _, r := range c.records {
		if r.ShownDate.After(cutoff) {
			kept = append(kept, r)
		}
	}
	c.records = append(kept, Record{EntryId: id, ShownDate: shown})

	return c.save()
}

// Len returns the number of retained records.
func (c *Cache) Len() int { return len(c.records) }

func (c *Cache) save() error {
	data, err := json.MarshalIndent(c.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create history dir: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
