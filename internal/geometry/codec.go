package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/encoding/wkt"
)

// EncodeWKT renders g as well-known text.
func EncodeWKT(g orb.Geometry) string {
	return wkt.MarshalString(g)
}

// DecodeWKT parses well-known text.
func DecodeWKT(s string) (orb.Geometry, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("decode wkt: %w", err)
	}
	return g, nil
}

// MustDecodeWKT parses well-known text and panics on error. Meant for
// fixtures.
func MustDecodeWKT(s string) orb.Geometry {
	g, err := DecodeWKT(s)
	if err != nil {
		panic(err)
	}
	return g
}

// EncodeWKB renders g as little-endian well-known binary.
func EncodeWKB(g orb.Geometry) ([]byte, error) {
	if IsEmpty(g) {
		return nil, &ErrUnsupportedGeometry{Op: "encodeWKB", Geometry: g}
	}
	data, err := wkb.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode wkb: %w", err)
	}
	return data, nil
}

// DecodeWKB parses well-known binary. An SRID prefix, as PostGIS writes it,
// is accepted and dropped.
func DecodeWKB(data []byte) (orb.Geometry, error) {
	s := wkb.Scanner(nil)
	if err := s.Scan(data); err != nil {
		return nil, fmt.Errorf("decode wkb: %w", err)
	}
	if !s.Valid {
		return nil, &ErrEmptyResult{Op: "decodeWKB"}
	}
	return s.Geometry, nil
}
