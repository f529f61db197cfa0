package uringbench

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []Result {
	w := Workload{Op: OpWrite, Pattern: PatternSequential, BlockSize: 4096, NumRequests: 1000}
	r1 := newResult(w, time.Second, 0, 150*time.Microsecond)
	w.Op = OpRead
	w.Pattern = PatternRandom
	r2 := newResult(w, 2*time.Second, 3, 300*time.Microsecond)
	return []Result{r1, r2}
}

func TestValidateFormat(t *testing.T) {
	for _, s := range []string{"table", "json", "flat", "TABLE", "Json"} {
		f, err := ValidateFormat(s)
		require.NoError(t, err, s)
		assert.Equal(t, OutputFormat(strings.ToLower(s)), f)
	}

	_, err := ValidateFormat("yaml")
	assert.Error(t, err)
}

func TestFormatResultsTable(t *testing.T) {
	out, err := FormatResults(sampleResults(), TableFormat)
	require.NoError(t, err)

	assert.Contains(t, out, "IOPS")
	assert.Contains(t, out, "BW (MB/s)")
	assert.Contains(t, out, "write")
	assert.Contains(t, out, "rand")
	// Header plus one row per result.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
}

func TestFormatResultsJSON(t *testing.T) {
	out, err := FormatResults(sampleResults(), JSONFormat)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, "write", decoded[0]["op"])
	assert.Equal(t, float64(1000), decoded[0]["iops"])
	assert.Equal(t, "rand", decoded[1]["pattern"])
	assert.Equal(t, float64(3), decoded[1]["failed"])
}

func TestFormatResultsFlat(t *testing.T) {
	out, err := FormatResults(sampleResults(), FlatFormat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Len(t, strings.Fields(line), 8)
	}
}

func TestFormatResultsUnknownFormat(t *testing.T) {
	_, err := FormatResults(sampleResults(), OutputFormat("xml"))
	assert.Error(t, err)
}
