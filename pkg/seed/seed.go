// Package seed derives independent, reproducible random streams for each cell
// of an evaluation grid. A stream's seed depends only on the global seed, the
// cell coordinates and the stream purpose, so cells can run in any order or in
// parallel and still draw the same numbers.
package seed

import (
	"encoding/binary"
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// Stream names the purpose of a random stream within one cell.
type Stream uint8

const (
	// Sample drives which records a cell draws from its bucket.
	Sample Stream = iota + 1
	// Split drives the cell's train/test split.
	Split
)

func (s Stream) String() string {
	switch s {
	case Sample:
		return "sample"
	case Split:
		return "split"
	default:
		return "stream"
	}
}

// Derive hashes (global, bucket, step, stream) into a 64-bit seed.
func Derive(global uint64, bucket, step int, s Stream) uint64 {
	var buf [25]byte
	binary.LittleEndian.PutUint64(buf[0:], global)
	binary.LittleEndian.PutUint64(buf[8:], uint64(bucket))
	binary.LittleEndian.PutUint64(buf[16:], uint64(step))
	buf[24] = byte(s)
	return xxhash.Sum64(buf[:])
}

// Rand returns a generator seeded with Derive(global, bucket, step, s).
// The generator is owned by the caller and must not be shared across goroutines.
func Rand(global uint64, bucket, step int, s Stream) *rand.Rand {
	return rand.New(rand.NewSource(int64(Derive(global, bucket, step, s))))
}
