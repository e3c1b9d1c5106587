package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewml/pkg/data"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func synthFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "reviews.csv")
	_, err := execute(t, "synth", "--n", "1000", "--seed", "1", "--out", path)
	require.NoError(t, err)
	return path
}

func TestSynthToStdout(t *testing.T) {
	out, err := execute(t, "synth", "--n", "4")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "id,text,label,word_count,sentiment_score", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,,POS,"))
}

func TestRunWritesResults(t *testing.T) {
	dir := t.TempDir()
	input := synthFile(t, dir)
	results := filepath.Join(dir, "results.csv")
	plotPath := filepath.Join(dir, "acc.png")
	metrics := filepath.Join(dir, "metrics.prom")

	out, err := execute(t, "run", "--input", input, "--mode", "balanced", "--out", results,
		"--table", "--plot", plotPath, "--metrics-out", metrics, "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "1.000 (0.50)")

	f, err := os.Open(results)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 26)
	assert.Equal(t, []string{"bucket_index", "size_step", "accuracy", "label_balance"}, recs[0])
	for _, r := range recs[1:] {
		assert.Equal(t, "1", r[2])
		assert.Equal(t, "0.5", r[3])
	}

	assert.FileExists(t, plotPath)
	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `reviewml_cells_total{code="ok",mode="balanced"} 25`)
}

func TestRunDetailedToStdout(t *testing.T) {
	input := synthFile(t, t.TempDir())
	out, err := execute(t, "run", "--input", input, "--k", "3", "--detailed", "--solver", "sgd")
	require.NoError(t, err)
	recs, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 10)
	assert.Contains(t, recs[0], "log_loss")
}

func TestRunConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	input := synthFile(t, dir)
	cfgPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("input: "+input+"\nk: 4\n"), 0o600))

	out, err := execute(t, "run", "--config", cfgPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 17)

	out, err = execute(t, "run", "--config", cfgPath, "--k", "2")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 5)
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, "run")
	require.ErrorIs(t, err, data.ErrInvalidConfig)

	input := synthFile(t, t.TempDir())
	_, err = execute(t, "run", "--input", input, "--k", "1")
	require.ErrorIs(t, err, data.ErrInvalidConfig)

	_, err = execute(t, "run", "--input", input, "--mode", "stratified")
	require.ErrorIs(t, err, data.ErrInvalidConfig)

	_, err = execute(t, "run", "--input", filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPartition(t *testing.T) {
	input := synthFile(t, t.TempDir())
	out, err := execute(t, "partition", "--input", input, "--k", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "records")
	assert.Contains(t, out, "uniform: min_count=")
	assert.Contains(t, out, "balanced: min_count=")
}
