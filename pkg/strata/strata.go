// Package strata partitions a dataset into K word-count quantile buckets.
//
// Boundaries are the empirical quantiles of word_count at probabilities
// 0, 1/K, ..., 1, computed once over the whole dataset. Bucket i (1-based)
// covers (boundary[i-1], boundary[i]]; the first bucket also holds
// boundary[0]. A value sitting exactly on an interior boundary therefore goes
// to the lower-indexed bucket, except the dataset maximum, which always goes
// to bucket K. Written as half-open ranges [lo, hi) the buckets would send a
// boundary value upward instead, so the closed side is on the right.
package strata

import (
	"fmt"
	"sort"

	"reviewml/pkg/data"
	"reviewml/pkg/stats"
)

// Bucket is one word-count quantile range and the records assigned to it.
type Bucket struct {
	Index   int     // 1..K
	Lo, Hi  float64 // boundary[Index-1], boundary[Index]
	Members []int   // dataset indices, ascending
	Pos     []int   // members labelled POS
	Neg     []int   // members labelled NEG
}

// Len returns the bucket population.
func (b Bucket) Len() int { return len(b.Members) }

// Partition is the read-only result of bucketing a dataset.
type Partition struct {
	K          int
	Boundaries []float64 // K+1 values, non-decreasing
	buckets    []Bucket
	assign     []int // record index -> bucket index (1..K)
}

// New buckets ds into k quantile ranges.
func New(ds *data.Dataset, k int) (*Partition, error) {
	if k < 2 {
		return nil, fmt.Errorf("%w: K must be at least 2, got %d", data.ErrInvalidConfig, k)
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: dataset is empty", data.ErrInvalidConfig)
	}
	bounds, err := stats.Quantiles(ds.WordCounts(), k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", data.ErrInvalidConfig, err)
	}

	p := &Partition{
		K:          k,
		Boundaries: bounds,
		buckets:    make([]Bucket, k),
		assign:     make([]int, ds.Len()),
	}
	for i := range p.buckets {
		p.buckets[i] = Bucket{Index: i + 1, Lo: bounds[i], Hi: bounds[i+1]}
	}
	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		b := p.Assign(r.WordCount)
		p.assign[i] = b
		bk := &p.buckets[b-1]
		bk.Members = append(bk.Members, i)
		if r.Label == data.Pos {
			bk.Pos = append(bk.Pos, i)
		} else {
			bk.Neg = append(bk.Neg, i)
		}
	}
	return p, nil
}

// Assign returns the bucket (1..K) a word count falls into under the
// partition's boundaries. Values outside [boundary[0], boundary[K]] clamp to
// the first or last bucket.
func (p *Partition) Assign(wordCount int) int {
	v := float64(wordCount)
	if v >= p.Boundaries[p.K] {
		return p.K
	}
	// First interior boundary >= v; boundary[0] is excluded so the minimum lands in bucket 1.
	i := sort.SearchFloat64s(p.Boundaries[1:], v)
	return i + 1
}

// BucketOf returns the bucket index of the record at dataset index i.
func (p *Partition) BucketOf(i int) int { return p.assign[i] }

// Bucket returns bucket i (1..K).
func (p *Partition) Bucket(i int) Bucket { return p.buckets[i-1] }

// Buckets returns all buckets in index order.
func (p *Partition) Buckets() []Bucket { return p.buckets }
