package experiment

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reviewml/pkg/data"
	"reviewml/pkg/model"
	"reviewml/pkg/sampling"
	"reviewml/pkg/seed"
	"reviewml/pkg/strata"
)

// Config controls one evaluation run.
type Config struct {
	K         int           // buckets and size steps; at least 2
	Mode      sampling.Mode // uniform or micro-balanced sampling
	Seed      uint64        // global seed; every cell derives its streams from it
	TestRatio float64       // held-out share of each sample; 0.25 when unset
	Solver    model.Solver
	// Workers bounds concurrent cells; 0 means GOMAXPROCS.
	Workers int
	// CellTimeout bounds one cell's evaluation; 0 disables it. An expired
	// cell is recorded as failed and the grid continues.
	CellTimeout time.Duration
	// ContinueOnError records failed cells as NaN and finishes the grid
	// instead of aborting on the first failure.
	ContinueOnError bool
}

// DefaultConfig returns K=5, uniform sampling, seed 1 and a 25% test split.
func DefaultConfig() Config {
	return Config{K: 5, Mode: sampling.Uniform, Seed: 1, TestRatio: 0.25}
}

func (c Config) validate() error {
	if c.K < 2 {
		return fmt.Errorf("%w: K must be at least 2, got %d", data.ErrInvalidConfig, c.K)
	}
	if c.TestRatio < 0 || c.TestRatio >= 1 {
		return fmt.Errorf("%w: test ratio %v outside [0, 1)", data.ErrInvalidConfig, c.TestRatio)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", data.ErrInvalidConfig)
	}
	if c.CellTimeout < 0 {
		return fmt.Errorf("%w: cell timeout must not be negative", data.ErrInvalidConfig)
	}
	return nil
}

// Status is the lifecycle of a Driver run.
type Status int32

const (
	NotStarted Status = iota
	Running
	Completed
	Failed
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Result is the output of a completed run.
type Result struct {
	RunID      uuid.UUID
	Config     Config
	Boundaries []float64 // K+1 word-count quantiles
	MinCount   int
	Sizes      []int // sample size of each step
	Grid       *Grid
	Started    time.Time
	Finished   time.Time
}

// Rows returns the result table in bucket-major order.
func (r *Result) Rows() []ResultRow { return r.Grid.Rows() }

// Failed returns the number of failed cells (only non-zero with ContinueOnError).
func (r *Result) Failed() int { return r.Grid.Failed() }

// Driver runs the stratified resampling grid. A Driver runs once.
type Driver struct {
	cfg     Config
	trainer Trainer
	metrics *Metrics
	status  atomic.Int32
}

// Option configures a Driver.
type Option func(*Driver)

// WithMetrics records cell and run outcomes in m.
func WithMetrics(m *Metrics) Option { return func(d *Driver) { d.metrics = m } }

// NewDriver validates cfg and returns a Driver ready to Run.
func NewDriver(cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.TestRatio == 0 {
		cfg.TestRatio = 0.25
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	d := &Driver{cfg: cfg, trainer: Trainer{TestRatio: cfg.TestRatio, Solver: cfg.Solver}}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

// Status returns the driver's lifecycle state.
func (d *Driver) Status() Status { return Status(d.status.Load()) }

// Run partitions ds, then evaluates all K×K cells on a bounded worker pool.
// Configuration and sizing problems fail before any cell runs. In strict mode
// the first failing cell cancels the rest and Run returns its *CellError; a
// cell that exceeds CellTimeout is recorded as failed without stopping the grid.
func (d *Driver) Run(ctx context.Context, ds *data.Dataset) (*Result, error) {
	if !d.status.CompareAndSwap(int32(NotStarted), int32(Running)) {
		return nil, fmt.Errorf("%w: driver already %s", data.ErrInvalidConfig, d.Status())
	}
	res, err := d.run(ctx, ds)
	status := Completed
	if err != nil {
		status = Failed
	}
	d.status.Store(int32(status))
	if d.metrics != nil {
		d.metrics.RunsTotal.WithLabelValues(d.cfg.Mode.String(), status.String()).Inc()
	}
	return res, err
}

func (d *Driver) run(ctx context.Context, ds *data.Dataset) (*Result, error) {
	res := &Result{RunID: uuid.New(), Config: d.cfg, Started: time.Now()}
	log := clog.FromContext(ctx).With("run_id", res.RunID.String(), "k", d.cfg.K, "mode", d.cfg.Mode.String())

	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: dataset is empty", data.ErrInvalidConfig)
	}
	part, err := strata.New(ds, d.cfg.K)
	if err != nil {
		return nil, err
	}
	sched, err := sampling.NewSchedule(part, d.cfg.Mode)
	if err != nil {
		return nil, err
	}
	res.Boundaries = part.Boundaries
	res.MinCount = sched.MinCount()
	res.Sizes = sched.Sizes()
	res.Grid = NewGrid(d.cfg.K)

	log.With("records", ds.Len(), "min_count", res.MinCount, "workers", d.cfg.Workers).
		Info("starting resampling grid")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)
	for _, spec := range sched.Specs() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			cell := res.Grid.At(spec.Bucket, spec.Step)
			d.evaluate(gctx, ds, sched, spec, cell)
			if cell.Err == nil {
				return nil
			}
			if d.cfg.ContinueOnError || d.cellTimedOut(gctx, cell) {
				log.With("bucket", spec.Bucket, "step", spec.Step, "code", string(Classify(cell.Err))).
					Warnf("cell failed, continuing: %v", cell.Err)
				return nil
			}
			return &CellError{Bucket: spec.Bucket, Step: spec.Step, Err: cell.Err}
		})
	}
	if err := g.Wait(); err != nil {
		log.With("code", string(Classify(err))).Errorf("resampling grid failed: %v", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Finished = time.Now()
	log.With("failed_cells", res.Failed(), "elapsed", res.Finished.Sub(res.Started).String()).
		Info("resampling grid completed")
	return res, nil
}

// cellTimedOut reports whether cell failed on its own deadline rather than
// on the run's. Such a cell stays recorded as failed in strict mode too.
func (d *Driver) cellTimedOut(ctx context.Context, cell *Cell) bool {
	return d.cfg.CellTimeout > 0 && ctx.Err() == nil && Classify(cell.Err) == CodeTimeout
}

// evaluate draws and scores one cell, writing only to cell.
func (d *Driver) evaluate(ctx context.Context, ds *data.Dataset, sched *sampling.Schedule, spec sampling.Spec, cell *Cell) {
	start := time.Now()
	if d.cfg.CellTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.CellTimeout)
		defer cancel()
	}

	cell.Size = spec.Size
	cell.Err = func() error {
		idx, err := sched.Draw(spec, seed.Rand(d.cfg.Seed, spec.Bucket, spec.Step, seed.Sample))
		if err != nil {
			return err
		}
		cell.LabelBalance = ds.PositiveShare(idx)
		ev, err := d.trainer.Evaluate(ctx, ds, idx, seed.Rand(d.cfg.Seed, spec.Bucket, spec.Step, seed.Split))
		cell.Eval = ev
		if err != nil {
			return err
		}
		cell.Accuracy = ev.Accuracy
		return nil
	}()
	if cell.Err != nil {
		cell.Accuracy = math.NaN()
	}
	cell.Duration = time.Since(start)
	cell.done = true

	code := Classify(cell.Err)
	if d.metrics != nil {
		d.metrics.CellsTotal.WithLabelValues(d.cfg.Mode.String(), string(code)).Inc()
		d.metrics.CellDuration.Observe(cell.Duration.Seconds())
	}
	clog.FromContext(ctx).With("bucket", spec.Bucket, "step", spec.Step, "size", spec.Size,
		"accuracy", cell.Accuracy, "label_balance", cell.LabelBalance, "code", string(code)).
		Debug("cell evaluated")
}
