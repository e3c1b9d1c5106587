package experiment

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewml/pkg/data"
	"reviewml/pkg/loader"
	"reviewml/pkg/model"
)

func all(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func TestEvaluateSeparable(t *testing.T) {
	ds := synthetic(t, 80, 0)
	for _, solver := range []model.Solver{model.Newton, model.SGD} {
		t.Run(solver.String(), func(t *testing.T) {
			tr := Trainer{TestRatio: 0.25, Solver: solver}
			ev, err := tr.Evaluate(context.Background(), ds, all(80), rand.New(rand.NewSource(3)))
			require.NoError(t, err)
			assert.Equal(t, 1.0, ev.Accuracy)
			assert.Equal(t, 20, ev.TestSize)
			assert.Equal(t, 60, ev.TrainSize)
			assert.Greater(t, ev.Slope, 0.0)
			assert.Greater(t, ev.Iterations, 0)
			assert.False(t, math.IsNaN(ev.LogLoss))
		})
	}
}

func TestEvaluateEmptySplit(t *testing.T) {
	ds := synthetic(t, 10, 0)
	_, err := Trainer{TestRatio: 0.25}.Evaluate(context.Background(), ds, []int{0, 1, 2}, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, data.ErrInsufficientData)
}

func TestEvaluateSingleClassTrain(t *testing.T) {
	ds := synthetic(t, 20, 0)
	// Even indices are all POS.
	_, err := Trainer{}.Evaluate(context.Background(), ds, []int{0, 2, 4, 6, 8, 10, 12, 14}, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, data.ErrInsufficientData)
}

func TestEvaluateSingleClassTest(t *testing.T) {
	// Eight alternating ±1 records split into 6 train and 2 test rows; which
	// rows land in test depends only on the seed.
	ds := synthetic(t, 8, 0)
	X, y := ds.Features(all(8))
	oneLabel, mixed := 0, 0
	for s := int64(0); s < 40; s++ {
		_, _, yTrain, yTest := loader.TrainTestSplit(X, y, 0.25, rand.New(rand.NewSource(s)))
		require.Len(t, yTest, 2)
		require.False(t, singleClass(yTrain), "six of eight alternating rows always hold both labels")

		ev, err := Trainer{}.Evaluate(context.Background(), ds, all(8), rand.New(rand.NewSource(s)))
		if yTest[0] == yTest[1] {
			oneLabel++
			require.ErrorIs(t, err, data.ErrInsufficientData, "seed %d", s)
			assert.Contains(t, err.Error(), "test rows share one label")
			continue
		}
		mixed++
		require.NoError(t, err, "seed %d", s)
		assert.Equal(t, 1.0, ev.Accuracy)
	}
	assert.Positive(t, oneLabel)
	assert.Positive(t, mixed)
}

func TestEvaluateConstantPredictor(t *testing.T) {
	ds := flat(t, 40)
	_, err := Trainer{}.Evaluate(context.Background(), ds, all(40), rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, data.ErrInsufficientData)
}

func TestEvaluateHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Trainer{}.Evaluate(ctx, synthetic(t, 40, 0), all(40), rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateDeterministic(t *testing.T) {
	ds := synthetic(t, 200, 1.5)
	a, err := Trainer{}.Evaluate(context.Background(), ds, all(200), rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	b, err := Trainer{}.Evaluate(context.Background(), ds, all(200), rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGrid(t *testing.T) {
	g := NewGrid(3)
	require.Len(t, g.Cells(), 9)
	c := g.At(2, 3)
	assert.Equal(t, 2, c.Bucket)
	assert.Equal(t, 3, c.Step)
	assert.False(t, c.Filled())
	assert.True(t, math.IsNaN(c.Accuracy))

	c.Accuracy, c.LabelBalance, c.done = 0.75, 0.5, true
	rows := g.Rows()
	assert.Equal(t, ResultRow{Bucket: 2, Step: 3, Accuracy: 0.75, LabelBalance: 0.5}, rows[5])
	assert.Zero(t, g.Failed())

	g.At(1, 1).Err = ErrInsufficientData
	assert.Equal(t, 1, g.Failed())
}
