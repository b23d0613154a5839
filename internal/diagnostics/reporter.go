// Package diagnostics collects the entries that still need a manual
// coordinate and writes them out for human follow-up.
package diagnostics

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/poi-sync/internal/geo"
	"github.com/sells-group/poi-sync/internal/identity"
	"github.com/sells-group/poi-sync/internal/model"
)

// Item is one manual-review entry as it looked before fallback assignment.
type Item struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Status  string
	Reason  geo.Reason
	Source  string

	raw model.RawEntry
}

// Reporter accumulates needs-fallback entries, first occurrence per
// identity wins. It implements geo.Sink.
type Reporter struct {
	key   identity.KeyFunc
	seen  map[string]struct{}
	items []Item
}

var _ geo.Sink = (*Reporter)(nil)

// NewReporter creates a Reporter deduplicating by key. A nil key means
// identity.ExactKey.
func NewReporter(key identity.KeyFunc) *Reporter {
	if key == nil {
		key = identity.ExactKey
	}
	return &Reporter{key: key, seen: make(map[string]struct{})}
}

// Add records e unless an entry with the same identity is already present.
func (r *Reporter) Add(e model.RawEntry, reason geo.Reason) {
	k := r.key(e.Name)
	if _, ok := r.seen[k]; ok {
		return
	}
	r.seen[k] = struct{}{}
	r.items = append(r.items, Item{
		Name:    e.Name,
		Address: e.Address,
		Phone:   e.Phone,
		Email:   e.Email,
		Status:  e.Status,
		Reason:  reason,
		Source:  e.Source,
		raw:     e,
	})
}

// Items returns the collected entries in insertion order.
func (r *Reporter) Items() []Item {
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of collected entries.
func (r *Reporter) Len() int { return len(r.items) }

// WriteJSON writes the entries to path as a JSON array in the source file
// format, replacing any previous report. An empty report is written as [].
func (r *Reporter) WriteJSON(path string) error {
	entries := make([]model.RawEntry, len(r.items))
	for i, it := range r.items {
		entries[i] = it.raw
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return eris.Wrap(err, "diagnostics: marshal report")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "diagnostics: create dir %s", dir)
	}

	// Write next to the target and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(dir, ".manual_review-*.json")
	if err != nil {
		return eris.Wrap(err, "diagnostics: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "diagnostics: write report")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "diagnostics: close report")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "diagnostics: replace %s", path)
	}
	return nil
}
