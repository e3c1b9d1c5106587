package data

import (
	"fmt"
	"math/rand"
)

// SyntheticOptions describes a generated review dataset.
type SyntheticOptions struct {
	N        int     // number of records; half POS (rounded up), half NEG
	MaxWords int     // word counts are uniform in [1, MaxWords]
	Noise    float64 // std-dev of Gaussian noise added to the +1/-1 score
	Seed     int64
}

// Synthetic generates records whose score is +1 for POS and -1 for NEG, plus
// optional Gaussian noise. With Noise=0 the score separates the classes perfectly.
func Synthetic(opts SyntheticOptions) (*Dataset, error) {
	if opts.N <= 0 {
		return nil, fmt.Errorf("%w: synthetic dataset needs N > 0", ErrInvalidConfig)
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = 1000
	}
	rnd := rand.New(rand.NewSource(opts.Seed))
	recs := make([]Record, opts.N)
	for i := range recs {
		l, score := Pos, 1.0
		if i%2 == 1 {
			l, score = Neg, -1.0
		}
		if opts.Noise > 0 {
			score += rnd.NormFloat64() * opts.Noise
		}
		recs[i] = Record{
			ID:             i + 1,
			Label:          l,
			WordCount:      1 + rnd.Intn(opts.MaxWords),
			SentimentScore: score,
		}
	}
	return NewDataset(recs)
}
