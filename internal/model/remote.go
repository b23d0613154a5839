package model

import "strings"

// RemoteRecord is the persisted shape of a location in the remote store.
// Links, Images and Audio belong to the admin UI; the pipeline writes them
// as null on create and never touches them afterwards.
type RemoteRecord struct {
	ID                  string  `json:"id,omitempty"`
	Title               string  `json:"title"`
	Category            string  `json:"category"`
	DetailedDescription string  `json:"detailedDescription"`
	LocationString      string  `json:"locationString"`
	Links               *string `json:"links"`
	Images              *string `json:"images"`
	Audio               *string `json:"audio"`
}

// RecordPatch lists the fields an in-place update may change.
type RecordPatch struct {
	DetailedDescription string `json:"detailedDescription"`
	LocationString      string `json:"locationString"`
}

// Apply copies the patched fields onto r, leaving everything else intact.
func (p RecordPatch) Apply(r *RemoteRecord) {
	r.DetailedDescription = p.DetailedDescription
	r.LocationString = p.LocationString
}

// FormatDescription builds the detailed description of a record: one line
// per non-empty contact field, then the category boilerplate.
func FormatDescription(r CanonicalRecord, boilerplate string) string {
	var lines []string
	if r.Address != "" {
		lines = append(lines, "Endereço: "+r.Address)
	}
	if r.Phone != "" {
		lines = append(lines, "Telefone: "+r.Phone)
	}
	if r.Email != "" {
		lines = append(lines, "E-mail: "+r.Email)
	}
	desc := strings.Join(lines, "\n")
	if b := strings.TrimSpace(boilerplate); b != "" {
		if desc != "" {
			desc += "\n\n"
		}
		desc += b
	}
	return desc
}

// NewRemoteRecord converts a canonical record into the full create shape.
func NewRemoteRecord(r CanonicalRecord, boilerplate string) RemoteRecord {
	return RemoteRecord{
		Title:               r.Name,
		Category:            r.Category,
		DetailedDescription: FormatDescription(r, boilerplate),
		LocationString:      r.LocationString(),
	}
}

// NewRecordPatch converts a canonical record into an update patch.
func NewRecordPatch(r CanonicalRecord, boilerplate string) RecordPatch {
	return RecordPatch{
		DetailedDescription: FormatDescription(r, boilerplate),
		LocationString:      r.LocationString(),
	}
}
