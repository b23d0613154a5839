// Package model defines the records that flow through the reconciliation
// pipeline: raw geocoding entries, canonical records and remote store rows.
package model

// StatusFound is the source-file status value for a successful geocode.
// Any other value means the geocoder did not find the address.
const StatusFound = "encontrado"

// GeocodeStatus is the normalized geocoding outcome of a RawEntry.
type GeocodeStatus string

const (
	GeocodeFound    GeocodeStatus = "found"
	GeocodeNotFound GeocodeStatus = "not_found"
)

// RawEntry is one occurrence of a place in one source file. Field tags
// follow the geocoding progress file format.
type RawEntry struct {
	Name      string   `json:"nome"`
	Address   string   `json:"endereco"`
	Phone     string   `json:"telefone,omitempty"`
	Email     string   `json:"email,omitempty"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Status    string   `json:"status"`

	// Source is the file the entry was read from.
	Source string `json:"-"`
}

// GeocodeStatus maps the raw status string onto found / not_found.
func (e RawEntry) GeocodeStatus() GeocodeStatus {
	if e.Status == StatusFound {
		return GeocodeFound
	}
	return GeocodeNotFound
}

// SourceBatch holds every entry parsed from a single source file.
type SourceBatch struct {
	File    string
	Entries []RawEntry
}
