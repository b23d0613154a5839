// Package identity decides when two raw entries describe the same place and
// merges progress files under a first-occurrence-wins policy.
package identity

import (
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// KeyFunc maps a display name to the identity key used for matching.
// Display names are never rewritten; only keys are compared.
type KeyFunc func(name string) string

// ExactKey compares names byte for byte. Names that differ only in accents
// or case are distinct identities.
func ExactKey(name string) string { return name }

// FoldKey removes diacritics, folds case and collapses whitespace, so
// "UBS São José" and "ubs sao  jose" share a key.
func FoldKey(name string) string {
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(strip, name)
	if err != nil {
		s = name
	}
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// KeyFuncFor returns the KeyFunc configured by name ("exact" or "fold").
func KeyFuncFor(mode string) (KeyFunc, error) {
	switch mode {
	case "", "exact":
		return ExactKey, nil
	case "fold":
		return FoldKey, nil
	default:
		return nil, eris.Errorf("identity: unknown normalization %q", mode)
	}
}
