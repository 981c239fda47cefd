package persistence

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
)

func TestDatasetFile_LoadYAML(t *testing.T) {
	d, err := NewDatasetFile(filepath.Join("testdata", "org.yaml")).LoadDataset(context.Background())
	require.NoError(t, err)

	require.Len(t, d.Units, 3)
	require.Len(t, d.Positions, 2)
	require.Len(t, d.People, 2)
	require.Len(t, d.Assignments, 2)

	u, ok := d.Unit(3)
	require.True(t, ok)
	require.Equal(t, "Tesorería", u.Name)
	require.Equal(t, 2, *u.ParentID)
	require.Equal(t, entities.UnitKindArea, u.Kind)

	pos, unit, ok := d.PersonPlacement(200)
	require.True(t, ok)
	require.Equal(t, "Tesorero", pos.Name)
	require.Equal(t, 3, unit.ID)
}

func TestDatasetFile_JSONRoundTrip(t *testing.T) {
	src, err := NewDatasetFile(filepath.Join("testdata", "org.yaml")).LoadDataset(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "org.json")
	var buf bytes.Buffer
	require.NoError(t, EncodeDataset(&buf, src, FormatOf(path)))
	require.True(t, strings.HasPrefix(buf.String(), "{"))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := NewDatasetFile(path).LoadDataset(context.Background())
	require.NoError(t, err)
	require.Equal(t, src.Units, got.Units)
	require.Equal(t, src.Assignments, got.Assignments)
}

func TestDecodeDataset_RejectsUnknownFields(t *testing.T) {
	_, err := DecodeDataset(strings.NewReader("units:\n  - id: 1\n    name: A\n    kind: 1\n    colour: red\n"), FormatYAML)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrInvalidDataset))
}

func TestDecodeDataset_ValidationFailure(t *testing.T) {
	doc := `
units:
  - id: 1
    name: A
    kind: 1
positions:
  - id: 5
    unit_id: 9
    name: Orphan
`
	_, err := DecodeDataset(strings.NewReader(doc), FormatYAML)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidDataset))
	require.Contains(t, err.Error(), "unit 9 not found")
}

func TestDecodeDataset_EmptyDocument(t *testing.T) {
	d, err := DecodeDataset(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	require.Empty(t, d.Units)
}

func TestDatasetFile_MissingFile(t *testing.T) {
	_, err := NewDatasetFile(filepath.Join(t.TempDir(), "nope.yaml")).LoadDataset(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFormatOf(t *testing.T) {
	require.Equal(t, FormatJSON, FormatOf("a/b.JSON"))
	require.Equal(t, FormatYAML, FormatOf("a/b.yml"))
	require.Equal(t, FormatYAML, FormatOf("dataset"))
}
