package identity

import (
	"go.uber.org/zap"

	"github.com/sells-group/poi-sync/internal/model"
)

// Keyed pairs a raw entry with its identity key.
type Keyed struct {
	Key   string
	Entry model.RawEntry
}

// Duplicate records a later occurrence discarded in favour of an earlier one.
type Duplicate struct {
	Key       string
	Name      string
	KeptFrom  string
	Discarded string
}

// Resolver merges source batches into one entry per identity. The first
// occurrence in source order wins; later occurrences are dropped even when
// they carry better data, because earlier files hold reviewed progress.
type Resolver struct {
	key KeyFunc
}

// NewResolver creates a Resolver using key for identity matching. A nil key
// means ExactKey.
func NewResolver(key KeyFunc) *Resolver {
	if key == nil {
		key = ExactKey
	}
	return &Resolver{key: key}
}

// Key returns the identity key of name.
func (r *Resolver) Key(name string) string { return r.key(name) }

// Resolve walks sources in the given order, then each file's entries in
// file order, and returns the surviving entries in first-seen order along
// with every discarded duplicate.
func (r *Resolver) Resolve(sources []model.SourceBatch) ([]Keyed, []Duplicate) {
	seen := make(map[string]int)
	var kept []Keyed
	var dups []Duplicate

	for _, src := range sources {
		for _, e := range src.Entries {
			k := r.key(e.Name)
			if idx, ok := seen[k]; ok {
				dups = append(dups, Duplicate{
					Key:       k,
					Name:      e.Name,
					KeptFrom:  kept[idx].Entry.Source,
					Discarded: src.File,
				})
				continue
			}
			if e.Source == "" {
				e.Source = src.File
			}
			seen[k] = len(kept)
			kept = append(kept, Keyed{Key: k, Entry: e})
		}
	}

	if len(dups) > 0 {
		zap.L().Debug("identity: discarded later occurrences",
			zap.Int("kept", len(kept)),
			zap.Int("discarded", len(dups)),
		)
	}
	return kept, dups
}
