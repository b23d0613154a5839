package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/poi-sync/internal/geo"
	"github.com/sells-group/poi-sync/internal/identity"
	"github.com/sells-group/poi-sync/internal/model"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func f(v float64) *float64 { return &v }

func TestBuild_UBSCentroFallbackScenario(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "progresso.json",
		`[{"nome":"UBS Centro","endereco":"Rua X, Centro","latitude":null,"longitude":null,"status":"não encontrado"}]`)

	res := New().Build(context.Background(), "health", []string{file})

	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	centro, ok := geo.DefaultEngine().Region("centro")
	require.True(t, ok)

	assert.Equal(t, "UBS Centro", rec.Name)
	assert.Equal(t, model.SourceFallback, rec.CoordinateSource)
	assert.Equal(t, "centro", rec.Region)
	assert.Equal(t, centro.Latitude, rec.Latitude)
	assert.Equal(t, centro.Longitude, rec.Longitude)
	assert.Equal(t, "health", rec.Category)
	assert.Equal(t, 1, res.Fallbacks)

	items := res.Diagnostics.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "UBS Centro", items[0].Name)
	assert.Equal(t, "não encontrado", items[0].Status)
}

func TestBuild_FirstFileWinsEvenWithWorseData(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.json",
		`[{"nome":"Clinic X","endereco":"Rua 1, Gonzaga","latitude":0,"longitude":0,"status":"não encontrado"}]`)
	b := writeSource(t, dir, "b.json",
		`[{"nome":"Clinic X","endereco":"Rua 1, Gonzaga","latitude":-23.9,"longitude":-46.3,"status":"encontrado"}]`)

	res := New().Build(context.Background(), "health", []string{a, b})

	require.Len(t, res.Records, 1)
	assert.Equal(t, model.SourceFallback, res.Records[0].CoordinateSource)
	assert.Equal(t, a, res.Records[0].Source)
	assert.Equal(t, "gonzaga", res.Records[0].Region)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, b, res.Duplicates[0].Discarded)
}

func TestBuild_SkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.json",
		`[{"nome":"UBS Gonzaga","endereco":"Gonzaga","latitude":-23.9663,"longitude":-46.3341,"status":"encontrado"}]`)

	res := New().Build(context.Background(), "health", []string{filepath.Join(dir, "missing.json"), good})

	require.Len(t, res.Records, 1)
	assert.Equal(t, model.SourceGeocoded, res.Records[0].CoordinateSource)
	assert.Empty(t, res.Records[0].Region)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 0, res.Diagnostics.Len())
}

func TestBuildFrom_EveryRecordHasValidCoordinates(t *testing.T) {
	bounds := geo.NewBounds(-24.3, -23.7, -46.8, -46.0)
	sources := []model.SourceBatch{{File: "a.json", Entries: []model.RawEntry{
		{Name: "geocoded", Address: "x", Latitude: f(-23.95), Longitude: f(-46.33), Status: "encontrado"},
		{Name: "null", Address: "Embaré", Status: "encontrado"},
		{Name: "zero", Address: "Macuco", Latitude: f(0), Longitude: f(0), Status: "encontrado"},
		{Name: "rio", Address: "Copacabana", Latitude: f(-22.97), Longitude: f(-43.18), Status: "encontrado"},
	}}}

	res := New(WithBounds(bounds)).BuildFrom("health", sources)

	require.Len(t, res.Records, 4)
	for _, r := range res.Records {
		assert.NotZero(t, r.Latitude, r.Name)
		assert.NotZero(t, r.Longitude, r.Name)
		assert.True(t, bounds.Contains(r.Latitude, r.Longitude), r.Name)
	}
	assert.Equal(t, 3, res.Fallbacks)
	assert.Equal(t, 3, res.Diagnostics.Len())
	assert.Equal(t, geo.DefaultRegionName, res.Records[3].Region)
}

func TestBuildFrom_OrderIsDeterministic(t *testing.T) {
	sources := []model.SourceBatch{
		{File: "a.json", Entries: []model.RawEntry{{Name: "B"}, {Name: "A"}}},
		{File: "b.json", Entries: []model.RawEntry{{Name: "C"}, {Name: "A"}}},
	}
	p := New()
	first := p.BuildFrom("health", sources)
	second := p.BuildFrom("health", sources)

	var names []string
	for _, r := range first.Records {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"B", "A", "C"}, names)
	assert.Equal(t, first.Records, second.Records)
}

func TestBuildFrom_FoldKeyMergesVariants(t *testing.T) {
	sources := []model.SourceBatch{
		{File: "a.json", Entries: []model.RawEntry{{Name: "UBS São José", Address: "Centro"}}},
		{File: "b.json", Entries: []model.RawEntry{{Name: "UBS SAO JOSE", Address: "Gonzaga"}}},
	}
	res := New(WithKeyFunc(identity.FoldKey)).BuildFrom("health", sources)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "UBS São José", res.Records[0].Name)
	assert.Equal(t, "ubs sao jose", res.Records[0].Key)
}
