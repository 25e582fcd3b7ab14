// Package dataset reads measurement/reference documents and writes error magnitude reports.
package dataset

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/errmag/internal/errmag"
)

const zstdSuffix = ".zst"

// Dataset is the decoded form of
//
//	{"reference": [[...], ...], "results": {"<scale>": {"<method>": [[...], ...]}}}
//
// where reference is N x D and every leaf is D x N.
type Dataset struct {
	Reference *mat.Dense
	Results   errmag.Results
}

type document struct {
	Reference any            `json:"reference"`
	Results   map[string]any `json:"results"`
}

// Load reads a dataset file, decompressing it first when the name ends in .zst.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	if strings.HasSuffix(path, zstdSuffix) {
		data, err = decompress(data)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", path, err)
		}
	}

	ds, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("scales", len(ds.Results)).Msg("Loaded dataset")
	return ds, nil
}

func Decode(data []byte) (*Dataset, error) {
	var doc document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal dataset: %w", err)
	}

	reference, reason := toDense(doc.Reference)
	if reason != "" {
		return nil, &errmag.TypeMismatchError{Reason: "reference " + reason}
	}

	results := make(errmag.Results, len(doc.Results))
	for scale, raw := range doc.Results {
		methods, ok := raw.(map[string]any)
		if !ok {
			return nil, &errmag.TypeMismatchError{
				Scale:  errmag.ScaleKey(scale),
				Reason: fmt.Sprintf("scale is %T, want object of methods", raw),
			}
		}
		leaves := make(map[errmag.MethodKey]*mat.Dense, len(methods))
		for method, rawLeaf := range methods {
			leaf, reason := toDense(rawLeaf)
			if reason != "" {
				return nil, &errmag.TypeMismatchError{
					Scale:  errmag.ScaleKey(scale),
					Method: errmag.MethodKey(method),
					Reason: "measurement " + reason,
				}
			}
			leaves[errmag.MethodKey(method)] = leaf
		}
		results[errmag.ScaleKey(scale)] = leaves
	}

	return &Dataset{Reference: reference, Results: results}, nil
}

// toDense converts a decoded JSON array of number arrays into a matrix. A non-empty reason
// is returned when raw is not a non-empty rectangular numeric array.
func toDense(raw any) (*mat.Dense, string) {
	rows, ok := raw.([]any)
	if !ok {
		return nil, fmt.Sprintf("is %T, want array of arrays", raw)
	}
	if len(rows) == 0 {
		return nil, "has no rows"
	}

	var (
		cols int
		data []float64
	)
	for i, r := range rows {
		row, ok := r.([]any)
		if !ok {
			return nil, fmt.Sprintf("row %d is %T, want array", i, r)
		}
		if i == 0 {
			cols = len(row)
			if cols == 0 {
				return nil, "has no columns"
			}
			data = make([]float64, 0, len(rows)*cols)
		}
		if len(row) != cols {
			return nil, fmt.Sprintf("row %d has %d values, want %d", i, len(row), cols)
		}
		for j, v := range row {
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Sprintf("value [%d][%d] is %T, want number", i, j, v)
			}
			data = append(data, f)
		}
	}

	return mat.NewDense(len(rows), cols, data), ""
}

// EncodeMagnitudes renders magnitudes as {"<scale>": {"<method>": [d0, d1, ...]}}.
func EncodeMagnitudes(m errmag.Magnitudes) ([]byte, error) {
	b, err := sonic.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal magnitudes: %w", err)
	}
	return b, nil
}

// WriteMagnitudes writes the encoded magnitudes to path, zstd-compressed when the name
// ends in .zst.
func WriteMagnitudes(path string, m errmag.Magnitudes) error {
	data, err := EncodeMagnitudes(m)
	if err != nil {
		return err
	}

	if strings.HasSuffix(path, zstdSuffix) {
		data, err = compress(data)
		if err != nil {
			return fmt.Errorf("magnitudes %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write magnitudes %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("Wrote magnitudes")
	return nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to create reader: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to decompress: %w", err)
	}
	return out, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to create writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("zstd: failed to compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zstd: failed to flush: %w", err)
	}
	return buf.Bytes(), nil
}
