package model

// Mode selects how a category is synchronized.
type Mode string

const (
	// ModeMerge reconciles merged progress files record by record.
	ModeMerge Mode = "merge"
	// ModeReplace deletes the category and recreates it from one file.
	ModeReplace Mode = "replace"
)

// FailedRecord describes a record the synchronizer could not write.
type FailedRecord struct {
	Title     string `json:"title"`
	Operation string `json:"operation"`
	Error     string `json:"error"`
	ErrorType string `json:"error_type"` // "transient" or "permanent"
}

// SyncSummary is the end-of-run report of a synchronization.
type SyncSummary struct {
	Category    string         `json:"category"`
	Mode        Mode           `json:"mode"`
	Processed   int            `json:"processed"`
	Inserted    int            `json:"inserted"`
	Updated     int            `json:"updated"`
	Deleted     int            `json:"deleted"`
	Errored     int            `json:"errored"`
	Fallbacks   int            `json:"fallbacks"`
	Diagnostics int            `json:"diagnostics"`
	Failed      []FailedRecord `json:"failed,omitempty"`
}

// Balanced reports whether every processed record was accounted for.
func (s SyncSummary) Balanced() bool {
	return s.Inserted+s.Updated+s.Errored == s.Processed
}
