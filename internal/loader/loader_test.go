package loader

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_Entries(t *testing.T) {
	data := `[
		{"nome":"UBS Centro","endereco":"Rua X, Centro","latitude":null,"longitude":null,"status":"não encontrado"},
		{"nome":"Policlínica Gonzaga","endereco":"Av. Ana Costa, Gonzaga","telefone":"(13) 3288-0000","email":"poli@santos.sp.gov.br","latitude":-23.9661,"longitude":-46.3339,"status":"encontrado"}
	]`
	entries, err := Parse("a.json", []byte(data))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "UBS Centro", entries[0].Name)
	assert.Nil(t, entries[0].Latitude)
	assert.Equal(t, "a.json", entries[0].Source)

	assert.Equal(t, "(13) 3288-0000", entries[1].Phone)
	require.NotNil(t, entries[1].Latitude)
	assert.InDelta(t, -23.9661, *entries[1].Latitude, 1e-9)
	assert.Equal(t, "encontrado", entries[1].Status)
}

func TestParse_StripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`[{"nome":"A","endereco":"B","status":"x"}]`)...)
	entries, err := Parse("bom.json", data)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParse_InvalidEncoding(t *testing.T) {
	// Latin-1 "ç" is not valid UTF-8.
	data := []byte("[{\"nome\":\"Associa\xe7\xe3o\",\"endereco\":\"x\",\"status\":\"x\"}]")
	_, err := Parse("latin1.json", data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidEncoding))
}

func TestParse_MalformedIsAtomic(t *testing.T) {
	data := `[{"nome":"A","endereco":"B","status":"encontrado"}, {"nome": ]`
	entries, err := Parse("broken.json", []byte(data))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Nil(t, entries)
}

func TestStream_SkipsMissingAndCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "1.json", `[{"nome":"A","endereco":"Rua 1","status":"encontrado","latitude":-23.9,"longitude":-46.3}]`)
	corrupt := writeFile(t, dir, "2.json", `{"not":"an array"}`)
	missing := filepath.Join(dir, "3.json")
	last := writeFile(t, dir, "4.json", `[{"nome":"B","endereco":"Rua 2","status":"x"}]`)

	skipped := map[string]error{}
	batches := LoadAll(context.Background(), []string{first, corrupt, missing, last},
		WithSkipHandler(func(file string, err error) { skipped[file] = err }))

	require.Len(t, batches, 2)
	assert.Equal(t, first, batches[0].File)
	assert.Equal(t, last, batches[1].File)
	assert.Equal(t, "B", batches[1].Entries[0].Name)

	require.Len(t, skipped, 2)
	assert.True(t, errors.Is(skipped[corrupt], ErrMalformed))
	assert.True(t, errors.Is(skipped[missing], fs.ErrNotExist))
}

func TestStream_EmptyArray(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.json", `[]`)

	batches := LoadAll(context.Background(), []string{path})
	require.Len(t, batches, 1)
	assert.Empty(t, batches[0].Entries)
}

func TestStream_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.json", `[]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batches := LoadAll(ctx, []string{path, path})
	assert.Empty(t, batches)
}
