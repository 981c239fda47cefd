package persistence

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
)

// Anchors files hold precomputed viewport coordinates per hierarchy level:
//
//	[[level]]
//	level = 1
//	x = -120.0
//	y = -240.0
//	zoom = 0.8
type anchorsDocument struct {
	Levels []anchor `toml:"level"`
}

type anchor struct {
	Level int     `toml:"level"`
	X     float64 `toml:"x"`
	Y     float64 `toml:"y"`
	Zoom  float64 `toml:"zoom"`
}

// DecodeAnchors parses level anchors. Zoom defaults to 1 and is clamped.
func DecodeAnchors(r io.Reader) (map[int]diagram.Viewport, error) {
	var doc anchorsDocument
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "decode anchors")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode anchors: unknown keys %v", undecoded)
	}

	out := make(map[int]diagram.Viewport, len(doc.Levels))
	for _, a := range doc.Levels {
		if a.Level < 0 {
			return nil, fmt.Errorf("decode anchors: negative level %d", a.Level)
		}
		if _, dup := out[a.Level]; dup {
			return nil, fmt.Errorf("decode anchors: level %d defined twice", a.Level)
		}
		zoom := a.Zoom
		if zoom == 0 {
			zoom = 1
		}
		out[a.Level] = diagram.Viewport{X: a.X, Y: a.Y, Zoom: zoom}.Clamped()
	}
	return out, nil
}

func LoadAnchors(path string) (map[int]diagram.Viewport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open anchors %s", path)
	}
	defer f.Close()
	return DecodeAnchors(f)
}
