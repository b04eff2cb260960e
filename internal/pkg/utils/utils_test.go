package utils

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{name: "empty", items: nil, size: 3, want: [][]int{}},
		{name: "exact", items: []int{1, 2, 3, 4}, size: 2, want: [][]int{{1, 2}, {3, 4}}},
		{name: "remainder", items: []int{1, 2, 3, 4, 5}, size: 2, want: [][]int{{1, 2}, {3, 4}, {5}}},
		{name: "non positive size", items: []int{1, 2, 3}, size: 0, want: [][]int{{1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Batch(tt.items, tt.size))
		})
	}
}

func TestBatchLargeSignatureList(t *testing.T) {
	sigs := make([]string, 2000)
	batches := Batch(sigs, 900)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 900)
	assert.Len(t, batches[1], 900)
	assert.Len(t, batches[2], 200)
}

func TestSortedKeys(t *testing.T) {
	a := map[string]int{"b": 1, "a": 2}
	b := map[string]int{"c": 3, "a": 4}
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(a, b))
	assert.Empty(t, SortedKeys[int]())
}

func TestQ64ToFloat64(t *testing.T) {
	one := new(big.Int).Lsh(big.NewInt(1), 64)
	assert.Equal(t, 1.0, Q64ToFloat64(one))
	assert.Equal(t, 0.5, Q64ToFloat64(new(big.Int).Rsh(one, 1)))
	assert.Equal(t, 0.0, Q64ToFloat64(nil))
	assert.Equal(t, 0, Float64ToQ64(2.0).Cmp(new(big.Int).Lsh(big.NewInt(1), 65)))
}

func TestBigIntToFloat64(t *testing.T) {
	assert.Equal(t, 1_000_000.0, BigIntToFloat64(big.NewInt(1_000_000)))
	assert.Equal(t, 0.0, BigIntToFloat64(nil))
}

func TestLoadJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":{"id":"x"}}`), 0o600))

	out, err := LoadJSONFile[map[string]map[string]string](path)
	require.NoError(t, err)
	assert.Equal(t, "x", out["a"]["id"])

	_, err = LoadJSONFile[map[string]string](filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("WALLET_HISTORY_TEST_ENV", "value")
	assert.Equal(t, "value", GetEnv("WALLET_HISTORY_TEST_ENV", "fallback"))
	assert.Equal(t, "fallback", GetEnv("WALLET_HISTORY_TEST_ENV_UNSET", "fallback"))
}
