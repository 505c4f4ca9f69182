package sqlite

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
)

// columnBlob is the stored form of one table column. Island columns keep
// their cells flattened row-major in Floats with the cell shape in Shape.
type columnBlob struct {
	Ints   []int
	Floats []float64
	Valid  []bool
	Bools  []bool
	Shape  [2]int
}

// imageBlob is the stored form of an image stack, flattened in
// (frame, x, y) order.
type imageBlob struct {
	Data []float64
}

// encodeBlob compresses v using gob encoding and gzip compression.
func encodeBlob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(v); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeBlob decompresses and decodes a gob+gzip blob into v.
func decodeBlob(blob []byte, v interface{}) error {
	if len(blob) == 0 {
		return fmt.Errorf("empty blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	if err := gob.NewDecoder(gz).Decode(v); err != nil {
		return fmt.Errorf("failed to decode blob: %w", err)
	}
	return nil
}
