package identity

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/poi-sync/internal/model"
)

func ptr(f float64) *float64 { return &f }

func TestFoldKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"UBS São José", "ubs sao jose"},
		{"  ubs   SAO jose ", "ubs sao jose"},
		{"Policlínica", "policlinica"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FoldKey(tt.in), tt.in)
	}
}

func TestExactKey_DistinguishesAccents(t *testing.T) {
	assert.NotEqual(t, ExactKey("UBS São José"), ExactKey("UBS Sao Jose"))
	assert.Equal(t, FoldKey("UBS São José"), FoldKey("UBS Sao Jose"))
}

func TestKeyFuncFor(t *testing.T) {
	k, err := KeyFuncFor("exact")
	require.NoError(t, err)
	assert.Equal(t, "A b", k("A b"))

	k, err = KeyFuncFor("fold")
	require.NoError(t, err)
	assert.Equal(t, "a b", k("A b"))

	_, err = KeyFuncFor("soundex")
	assert.Error(t, err)
}

func TestResolve_FirstFileWins(t *testing.T) {
	fileA := model.SourceBatch{File: "a.json", Entries: []model.RawEntry{
		{Name: "Clinic X", Address: "Rua A", Latitude: ptr(0), Longitude: ptr(0), Status: "não encontrado"},
	}}
	fileB := model.SourceBatch{File: "b.json", Entries: []model.RawEntry{
		{Name: "Clinic X", Address: "Rua B", Latitude: ptr(-23.9), Longitude: ptr(-46.3), Status: "encontrado"},
		{Name: "Clinic Y", Address: "Rua C", Status: "encontrado"},
	}}

	kept, dups := NewResolver(nil).Resolve([]model.SourceBatch{fileA, fileB})

	require.Len(t, kept, 2)
	assert.Equal(t, "Rua A", kept[0].Entry.Address)
	assert.Equal(t, "a.json", kept[0].Entry.Source)
	assert.InDelta(t, 0, *kept[0].Entry.Latitude, 0)
	assert.Equal(t, "Clinic Y", kept[1].Entry.Name)

	require.Len(t, dups, 1)
	assert.Equal(t, Duplicate{Key: "Clinic X", Name: "Clinic X", KeptFrom: "a.json", Discarded: "b.json"}, dups[0])
}

func TestResolve_OrderIsTheParameter(t *testing.T) {
	fileA := model.SourceBatch{File: "a.json", Entries: []model.RawEntry{{Name: "X", Address: "from A"}}}
	fileB := model.SourceBatch{File: "b.json", Entries: []model.RawEntry{{Name: "X", Address: "from B"}}}

	r := NewResolver(ExactKey)
	ab, _ := r.Resolve([]model.SourceBatch{fileA, fileB})
	ba, _ := r.Resolve([]model.SourceBatch{fileB, fileA})

	assert.Equal(t, "from A", ab[0].Entry.Address)
	assert.Equal(t, "from B", ba[0].Entry.Address)
}

func TestResolve_FirstOccurrenceWithinFile(t *testing.T) {
	file := model.SourceBatch{File: "a.json", Entries: []model.RawEntry{
		{Name: "X", Address: "first"},
		{Name: "Y", Address: "y"},
		{Name: "X", Address: "second"},
	}}
	kept, dups := NewResolver(nil).Resolve([]model.SourceBatch{file})
	require.Len(t, kept, 2)
	assert.Equal(t, "first", kept[0].Entry.Address)
	assert.Equal(t, "Y", kept[1].Entry.Name)
	assert.Len(t, dups, 1)
}

func TestResolve_Idempotent(t *testing.T) {
	sources := []model.SourceBatch{
		{File: "a.json", Entries: []model.RawEntry{{Name: "A"}, {Name: "B"}, {Name: "A"}}},
		{File: "b.json", Entries: []model.RawEntry{{Name: "C"}, {Name: "B"}}},
	}
	r := NewResolver(nil)
	first, _ := r.Resolve(sources)
	second, _ := r.Resolve(sources)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("resolve not idempotent (-first +second):\n%s", diff)
	}
}

func TestResolve_FoldMergesAccentVariants(t *testing.T) {
	sources := []model.SourceBatch{
		{File: "a.json", Entries: []model.RawEntry{{Name: "UBS São José"}}},
		{File: "b.json", Entries: []model.RawEntry{{Name: "UBS Sao Jose"}}},
	}

	exact, _ := NewResolver(ExactKey).Resolve(sources)
	assert.Len(t, exact, 2)

	folded, _ := NewResolver(FoldKey).Resolve(sources)
	require.Len(t, folded, 1)
	// Display name is the first occurrence, untouched.
	assert.Equal(t, "UBS São José", folded[0].Entry.Name)
	assert.Equal(t, "ubs sao jose", folded[0].Key)
}
