// Package sampling schedules and draws the per-bucket samples of an
// evaluation grid.
//
// A Schedule fixes min_count, the largest sample size every bucket can
// supply, and splits it into K evenly spaced sizes. Uniform mode draws a
// sample from the whole bucket regardless of label; MicroBalanced mode draws
// half of it from POS and half from NEG so every sample is exactly balanced.
// Balanced sizes are spaced per label and doubled, so they are always even.
package sampling

import (
	"fmt"
	"math/rand"
	"strings"

	"reviewml/pkg/data"
	"reviewml/pkg/strata"
)

// Mode selects how a sample is drawn from its bucket.
type Mode int

const (
	// Uniform draws records from the bucket regardless of label.
	Uniform Mode = iota
	// MicroBalanced draws equal POS and NEG counts from the bucket.
	MicroBalanced
)

func (m Mode) String() string {
	switch m {
	case Uniform:
		return "uniform"
	case MicroBalanced:
		return "balanced"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "uniform" and "balanced" (or "micro-balanced").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform":
		return Uniform, nil
	case "balanced", "micro-balanced", "microbalanced":
		return MicroBalanced, nil
	}
	return Uniform, fmt.Errorf("%w: unknown sampling mode %q", data.ErrInvalidConfig, s)
}

// Spec identifies one grid cell: a bucket and one of K size steps within it.
type Spec struct {
	Bucket int // 1..K
	Step   int // 1..K
	Size   int // records to draw
	K      int
}

// Fraction returns step/K, the share of min_count this cell draws.
func (s Spec) Fraction() float64 { return float64(s.Step) / float64(s.K) }

// Schedule holds the sample sizes for one partition and mode.
type Schedule struct {
	mode     Mode
	part     *strata.Partition
	minCount int
}

// NewSchedule computes min_count for part under mode. Every bucket must hold
// at least two records of each label, and min_count must leave the first step
// non-empty; otherwise it returns data.ErrInsufficientData naming the bucket.
func NewSchedule(part *strata.Partition, mode Mode) (*Schedule, error) {
	if mode != Uniform && mode != MicroBalanced {
		return nil, fmt.Errorf("%w: unknown sampling mode %d", data.ErrInvalidConfig, int(mode))
	}
	s := &Schedule{mode: mode, part: part, minCount: -1}
	smallest := 0
	for _, b := range part.Buckets() {
		if len(b.Pos) < 2 || len(b.Neg) < 2 {
			return nil, fmt.Errorf("%w: bucket %d has %d POS and %d NEG records, need at least 2 of each",
				data.ErrInsufficientData, b.Index, len(b.Pos), len(b.Neg))
		}
		n := b.Len()
		if mode == MicroBalanced {
			n = 2 * min(len(b.Pos), len(b.Neg))
		}
		if s.minCount < 0 || n < s.minCount {
			s.minCount, smallest = n, b.Index
		}
	}
	if s.Size(1) < 1 {
		return nil, fmt.Errorf("%w: bucket %d supports only %d %s records, too few for K=%d steps",
			data.ErrInsufficientData, smallest, s.minCount, mode, part.K)
	}
	return s, nil
}

// Mode returns the sampling mode.
func (s *Schedule) Mode() Mode { return s.mode }

// MinCount returns the largest sample size every bucket can supply.
func (s *Schedule) MinCount() int { return s.minCount }

// Size returns the sample size of step (1..K): step*min_count/K rounded down,
// or in MicroBalanced mode twice step*(min_count/2)/K rounded down. Step K
// always equals min_count.
func (s *Schedule) Size(step int) int {
	if s.mode == MicroBalanced {
		return 2 * (step * (s.minCount / 2) / s.part.K)
	}
	return step * s.minCount / s.part.K
}

// Sizes returns the K sample sizes in step order.
func (s *Schedule) Sizes() []int {
	out := make([]int, s.part.K)
	for i := range out {
		out[i] = s.Size(i + 1)
	}
	return out
}

// Spec returns the cell description for (bucket, step).
func (s *Schedule) Spec(bucket, step int) Spec {
	return Spec{Bucket: bucket, Step: step, Size: s.Size(step), K: s.part.K}
}

// Specs returns every cell of the K×K grid, bucket-major.
func (s *Schedule) Specs() []Spec {
	k := s.part.K
	out := make([]Spec, 0, k*k)
	for b := 1; b <= k; b++ {
		for st := 1; st <= k; st++ {
			out = append(out, s.Spec(b, st))
		}
	}
	return out
}

// Draw returns the dataset indices of one sample for spec, using rnd.
// Records are drawn without replacement within the sample; separate draws are
// independent, so a record may appear in several samples.
func (s *Schedule) Draw(spec Spec, rnd *rand.Rand) ([]int, error) {
	if spec.Bucket < 1 || spec.Bucket > s.part.K {
		return nil, fmt.Errorf("%w: bucket %d outside 1..%d", data.ErrInvalidConfig, spec.Bucket, s.part.K)
	}
	b := s.part.Bucket(spec.Bucket)
	switch s.mode {
	case MicroBalanced:
		// Only hand-built specs can be odd; the extra record goes to POS.
		nPos := (spec.Size + 1) / 2
		nNeg := spec.Size / 2
		pos, err := choose(b.Pos, nPos, rnd, b.Index, "POS")
		if err != nil {
			return nil, err
		}
		neg, err := choose(b.Neg, nNeg, rnd, b.Index, "NEG")
		if err != nil {
			return nil, err
		}
		return append(pos, neg...), nil
	default:
		return choose(b.Members, spec.Size, rnd, b.Index, "any-label")
	}
}

// choose picks n distinct elements of pool in random order.
func choose(pool []int, n int, rnd *rand.Rand, bucket int, what string) ([]int, error) {
	if n < 0 || n > len(pool) {
		return nil, fmt.Errorf("%w: bucket %d: need %d %s records, have %d",
			data.ErrSamplingExhausted, bucket, n, what, len(pool))
	}
	perm := rnd.Perm(len(pool))
	out := make([]int, n)
	for i := range out {
		out[i] = pool[perm[i]]
	}
	return out, nil
}
