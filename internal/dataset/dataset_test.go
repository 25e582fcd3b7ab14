package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/errmag/internal/errmag"
)

const sampleDoc = `{
	"reference": [[0, 0], [0, 0], [1, 1]],
	"results": {
		"0.5": {
			"planar": [[0, 3, 1], [0, 4, 1]],
			"exact":  [[0, 0, 1], [0, 0, 1]]
		},
		"1": {}
	}
}`

func TestDecode_Success(t *testing.T) {
	ds, err := Decode([]byte(sampleDoc))
	require.NoError(t, err)

	rows, cols := ds.Reference.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)

	require.Len(t, ds.Results, 2)
	require.Contains(t, ds.Results, errmag.ScaleKey("1"))
	assert.Empty(t, ds.Results["1"])

	planar := ds.Results["0.5"]["planar"]
	require.NotNil(t, planar)
	assert.True(t, mat.Equal(mat.NewDense(2, 3, []float64{0, 3, 1, 0, 4, 1}), planar))
}

func TestDecode_ThenCompute(t *testing.T) {
	ds, err := Decode([]byte(sampleDoc))
	require.NoError(t, err)

	got, err := errmag.ComputeErrorMagnitude(ds.Results, ds.Reference)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 5, 0}, got["0.5"]["planar"], 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, got["0.5"]["exact"], 1e-12)
	assert.Empty(t, got["1"])
}

func TestDecode_TypeMismatch(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantScale  errmag.ScaleKey
		wantMethod errmag.MethodKey
	}{
		{
			name: "missing reference",
			doc:  `{"results": {}}`,
		},
		{
			name: "reference is a scalar",
			doc:  `{"reference": 3, "results": {}}`,
		},
		{
			name: "ragged reference",
			doc:  `{"reference": [[1, 2], [3]], "results": {}}`,
		},
		{
			name:       "string in leaf",
			doc:        `{"reference": [[1, 2]], "results": {"0": {"A": [["x"], [1]]}}}`,
			wantScale:  "0",
			wantMethod: "A",
		},
		{
			name:       "leaf is flat",
			doc:        `{"reference": [[1, 2]], "results": {"0": {"A": [1, 2]}}}`,
			wantScale:  "0",
			wantMethod: "A",
		},
		{
			name:       "leaf has no rows",
			doc:        `{"reference": [[1, 2]], "results": {"s": {"m": []}}}`,
			wantScale:  "s",
			wantMethod: "m",
		},
		{
			name:      "scale is a number",
			doc:       `{"reference": [[1, 2]], "results": {"0": 5}}`,
			wantScale: "0",
		},
		{
			name:      "scale is null",
			doc:       `{"reference": [[1, 2]], "results": {"0": null}}`,
			wantScale: "0",
		},
		{
			name:      "scale is an array",
			doc:       `{"reference": [[1, 2]], "results": {"0.5": [[1], [2]]}}`,
			wantScale: "0.5",
		},
		{
			name:       "leaf has empty rows",
			doc:        `{"reference": [[1, 2]], "results": {"s": {"m": [[], []]}}}`,
			wantScale:  "s",
			wantMethod: "m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			var typeErr *errmag.TypeMismatchError
			require.ErrorAs(t, err, &typeErr)
			assert.ErrorIs(t, err, errmag.ErrTypeMismatch)
			assert.Equal(t, tt.wantScale, typeErr.Scale)
			assert.Equal(t, tt.wantMethod, typeErr.Method)
		})
	}
}

func TestDecode_ScaleTypeMismatchMessage(t *testing.T) {
	_, err := Decode([]byte(`{"reference": [[1, 2]], "results": {"0": 5}}`))
	require.Error(t, err)
	assert.Equal(t, `type mismatch: scale "0": scale is float64, want object of methods`, err.Error())
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{"reference": [[1, 2]`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errmag.ErrTypeMismatch)
}

func TestLoad_PlainAndCompressed(t *testing.T) {
	dir := t.TempDir()

	plainPath := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(plainPath, []byte(sampleDoc), 0o644))

	compressed, err := compress([]byte(sampleDoc))
	require.NoError(t, err)
	zstPath := filepath.Join(dir, "results.json.zst")
	require.NoError(t, os.WriteFile(zstPath, compressed, 0o644))

	plain, err := Load(plainPath)
	require.NoError(t, err)
	zst, err := Load(zstPath)
	require.NoError(t, err)

	assert.True(t, mat.Equal(plain.Reference, zst.Reference))
	for scale, methods := range plain.Results {
		require.Len(t, zst.Results[scale], len(methods))
		for method, leaf := range methods {
			assert.True(t, mat.Equal(leaf, zst.Results[scale][method]))
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	corrupt := filepath.Join(dir, "corrupt.json.zst")
	require.NoError(t, os.WriteFile(corrupt, []byte("not zstd"), 0o644))
	_, err = Load(corrupt)
	require.Error(t, err)
}

func TestWriteMagnitudes(t *testing.T) {
	m := errmag.Magnitudes{
		"0.5": {"planar": []float64{0, 5, 0}},
		"1":   {},
	}

	for _, name := range []string{"out.json", "out.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteMagnitudes(path, m))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			if filepath.Ext(name) == zstdSuffix {
				data, err = decompress(data)
				require.NoError(t, err)
			}

			var got map[string]map[string][]float64
			require.NoError(t, sonic.Unmarshal(data, &got))
			assert.Equal(t, []float64{0, 5, 0}, got["0.5"]["planar"])
			require.Contains(t, got, "1")
			assert.Empty(t, got["1"])
		})
	}
}
