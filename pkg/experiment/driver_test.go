package experiment

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewml/pkg/data"
	"reviewml/pkg/sampling"
)

func synthetic(t *testing.T, n int, noise float64) *data.Dataset {
	t.Helper()
	ds, err := data.Synthetic(data.SyntheticOptions{N: n, MaxWords: 1000, Noise: noise, Seed: 1})
	require.NoError(t, err)
	return ds
}

// flat builds a dataset with spread word counts and a constant score, so every
// fit sees an uninformative predictor.
func flat(t *testing.T, n int) *data.Dataset {
	t.Helper()
	recs := make([]data.Record, n)
	for i := range recs {
		l := data.Pos
		if i%2 == 1 {
			l = data.Neg
		}
		recs[i] = data.Record{ID: i + 1, Label: l, WordCount: 1 + i}
	}
	ds, err := data.NewDataset(recs)
	require.NoError(t, err)
	return ds
}

func run(t *testing.T, cfg Config, ds *data.Dataset, opts ...Option) (*Result, error) {
	t.Helper()
	d, err := NewDriver(cfg, opts...)
	require.NoError(t, err)
	return d.Run(context.Background(), ds)
}

func TestRunSeparableBalanced(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = sampling.MicroBalanced

	res, err := run(t, cfg, synthetic(t, 1000, 0))
	require.NoError(t, err)
	require.Len(t, res.Boundaries, 6)
	require.Len(t, res.Sizes, 5)
	assert.Equal(t, res.MinCount, res.Sizes[4])

	rows := res.Rows()
	require.Len(t, rows, 25)
	for i, r := range rows {
		assert.Equal(t, i/5+1, r.Bucket)
		assert.Equal(t, i%5+1, r.Step)
		assert.Equal(t, 1.0, r.Accuracy, "cell (%d,%d)", r.Bucket, r.Step)
		assert.Equal(t, 0.5, r.LabelBalance, "cell (%d,%d)", r.Bucket, r.Step)
	}
	assert.Zero(t, res.Failed())
	assert.False(t, res.Finished.Before(res.Started))
}

func TestRunSeparableUniform(t *testing.T) {
	res, err := run(t, DefaultConfig(), synthetic(t, 1000, 0))
	require.NoError(t, err)
	for _, r := range res.Rows() {
		assert.Equal(t, 1.0, r.Accuracy, "cell (%d,%d)", r.Bucket, r.Step)
		assert.GreaterOrEqual(t, r.LabelBalance, 0.0)
		assert.LessOrEqual(t, r.LabelBalance, 1.0)
	}
	for b := 1; b <= 5; b++ {
		for s := 1; s <= 5; s++ {
			c := res.Grid.At(b, s)
			assert.True(t, c.Filled())
			assert.Equal(t, res.Sizes[s-1], c.Size)
			assert.Equal(t, c.Size, c.Eval.TrainSize+c.Eval.TestSize)
		}
	}
}

func TestRunDeterministicAcrossWorkers(t *testing.T) {
	ds := synthetic(t, 1200, 1.0)
	for _, mode := range []sampling.Mode{sampling.Uniform, sampling.MicroBalanced} {
		t.Run(mode.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Mode = mode
			cfg.Seed = 42

			cfg.Workers = 1
			serial, err := run(t, cfg, ds)
			require.NoError(t, err)
			cfg.Workers = 8
			parallel, err := run(t, cfg, ds)
			require.NoError(t, err)

			if diff := cmp.Diff(serial.Rows(), parallel.Rows(), cmpopts.EquateNaNs()); diff != "" {
				t.Errorf("rows differ between 1 and 8 workers (-serial +parallel):\n%s", diff)
			}
			assert.NotEqual(t, serial.RunID, parallel.RunID)
		})
	}
}

func TestRunSeedChangesSamples(t *testing.T) {
	ds := synthetic(t, 1200, 1.0)
	cfg := DefaultConfig()
	a, err := run(t, cfg, ds)
	require.NoError(t, err)
	cfg.Seed = 7
	b, err := run(t, cfg, ds)
	require.NoError(t, err)
	assert.NotEqual(t, a.Rows(), b.Rows())
}

func TestRunRejectsBadInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.K = 1
	_, err := NewDriver(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.TestRatio = 1
	_, err = NewDriver(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	d, err := NewDriver(DefaultConfig())
	require.NoError(t, err)
	_, err = d.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, Failed, d.Status())
}

func TestRunTooSmallForK(t *testing.T) {
	cfg := DefaultConfig()
	cfg.K = 10
	_, err := run(t, cfg, synthetic(t, 30, 0))
	require.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, CodeInsufficientData, Classify(err))
}

func TestRunStrictStopsOnFailedCell(t *testing.T) {
	_, err := run(t, DefaultConfig(), flat(t, 200))
	require.Error(t, err)

	var cerr *CellError
	require.ErrorAs(t, err, &cerr)
	assert.GreaterOrEqual(t, cerr.Bucket, 1)
	assert.GreaterOrEqual(t, cerr.Step, 1)
	require.ErrorIs(t, err, ErrInsufficientData)
	assert.Contains(t, err.Error(), "cell (bucket")
}

func TestRunContinueOnError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContinueOnError = true
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	res, err := run(t, cfg, flat(t, 200), WithMetrics(m))
	require.NoError(t, err)
	assert.Equal(t, 25, res.Failed())
	for _, c := range res.Grid.Cells() {
		assert.True(t, c.Filled())
		assert.True(t, math.IsNaN(c.Accuracy))
		assert.Equal(t, CodeInsufficientData, Classify(c.Err))
		assert.InDelta(t, 0.5, c.LabelBalance, 0.5)
	}
	assert.Equal(t, 25.0, testutil.ToFloat64(m.CellsTotal.WithLabelValues("uniform", "insufficient_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("uniform", "completed")))
}

func TestRunMetrics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = sampling.MicroBalanced
	m := NewMetrics(prometheus.NewRegistry())

	_, err := run(t, cfg, synthetic(t, 1000, 0), WithMetrics(m))
	require.NoError(t, err)
	assert.Equal(t, 25.0, testutil.ToFloat64(m.CellsTotal.WithLabelValues("balanced", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("balanced", "completed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CellDuration))
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d, err := NewDriver(DefaultConfig())
	require.NoError(t, err)
	_, err = d.Run(ctx, synthetic(t, 500, 0))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Failed, d.Status())
}

func TestDriverRunsOnce(t *testing.T) {
	d, err := NewDriver(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, NotStarted, d.Status())

	_, err = d.Run(context.Background(), synthetic(t, 500, 0))
	require.NoError(t, err)
	assert.Equal(t, Completed, d.Status())

	_, err = d.Run(context.Background(), synthetic(t, 500, 0))
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, Completed, d.Status())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{nil, CodeOK},
		{context.DeadlineExceeded, CodeTimeout},
		{&CellError{Bucket: 1, Step: 2, Err: context.DeadlineExceeded}, CodeTimeout},
		{context.Canceled, CodeCanceled},
		{ErrInvalidConfig, CodeInvalidConfig},
		{&CellError{Bucket: 3, Step: 3, Err: ErrInsufficientData}, CodeInsufficientData},
		{ErrSamplingExhausted, CodeSamplingExhausted},
		{errors.New("boom"), CodeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "%v", tt.err)
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "not_started", NotStarted.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}

func TestRunCellTimeout(t *testing.T) {
	for _, relaxed := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.CellTimeout = time.Nanosecond
		cfg.ContinueOnError = relaxed
		m := NewMetrics(prometheus.NewRegistry())

		d, err := NewDriver(cfg, WithMetrics(m))
		require.NoError(t, err)
		res, err := d.Run(context.Background(), synthetic(t, 500, 0))
		require.NoError(t, err, "continue_on_error=%v", relaxed)
		assert.Equal(t, Completed, d.Status())
		assert.Equal(t, 25, res.Failed())
		for _, c := range res.Grid.Cells() {
			assert.True(t, c.Filled())
			assert.True(t, math.IsNaN(c.Accuracy))
			assert.Equal(t, CodeTimeout, Classify(c.Err))
		}
		assert.Equal(t, 25.0, testutil.ToFloat64(m.CellsTotal.WithLabelValues("uniform", "timeout")))
	}
}
