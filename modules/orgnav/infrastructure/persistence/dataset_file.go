package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
)

// ErrInvalidDataset marks datasets that decoded fine but failed validation.
var ErrInvalidDataset = errors.New("invalid dataset")

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension; anything but .json is YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// datasetDocument is the on-disk shape of a dataset.
type datasetDocument struct {
	Units       []entities.Unit       `json:"units" yaml:"units"`
	Positions   []entities.Position   `json:"positions" yaml:"positions"`
	People      []entities.Person     `json:"people" yaml:"people"`
	Assignments []entities.Assignment `json:"assignments" yaml:"assignments"`
}

func validated(d *entities.Dataset) (*entities.Dataset, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	return d, nil
}

// DecodeDataset reads and validates a dataset. Unknown fields are rejected.
func DecodeDataset(r io.Reader, format Format) (*entities.Dataset, error) {
	var doc datasetDocument
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode json dataset")
		}
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, "decode yaml dataset")
		}
	}
	return validated(entities.NewDataset(doc.Units, doc.Positions, doc.People, doc.Assignments))
}

func EncodeDataset(w io.Writer, d *entities.Dataset, format Format) error {
	doc := datasetDocument{
		Units:       d.Units,
		Positions:   d.Positions,
		People:      d.People,
		Assignments: d.Assignments,
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(doc), "encode json dataset")
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(err, "encode yaml dataset")
		}
		return errors.Wrap(enc.Close(), "encode yaml dataset")
	}
}

// DatasetFile serves a dataset stored as a YAML or JSON file. The file is read on every load.
type DatasetFile struct {
	path string
}

func NewDatasetFile(path string) *DatasetFile {
	return &DatasetFile{path: path}
}

func (f *DatasetFile) Path() string {
	return f.path
}

func (f *DatasetFile) LoadDataset(ctx context.Context) (*entities.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.Wrapf(err, "read dataset %s", f.path)
	}
	d, err := DecodeDataset(bytes.NewReader(data), FormatOf(f.path))
	if err != nil {
		return nil, errors.Wrapf(err, "load dataset %s", f.path)
	}
	return d, nil
}
