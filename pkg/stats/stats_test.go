package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanVarianceStd(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 5.0, Mean(x), 1e-12)
	assert.InDelta(t, 4.0, Variance(x), 1e-12)
	assert.InDelta(t, 2.0, Std(x), 1e-12)
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Variance([]float64{3, 3, 3}))
}

func TestPercentile(t *testing.T) {
	x := []float64{5, 1, 4, 2, 3}
	assert.Equal(t, 1.0, Percentile(x, 0))
	assert.Equal(t, 5.0, Percentile(x, 100))
	assert.Equal(t, 3.0, Percentile(x, 50))
	assert.InDelta(t, 1.4, Percentile(x, 10), 1e-12)
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, x, "input must not be reordered")
}

func TestQuantiles(t *testing.T) {
	x := make([]float64, 0, 11)
	for i := 10; i >= 0; i-- {
		x = append(x, float64(i*10))
	}
	q, err := Quantiles(x, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 20, 40, 60, 80, 100}, q)

	q, err = Quantiles([]float64{1, 1, 1, 1, 9}, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1, 9}, q)
	for i := 1; i < len(q); i++ {
		assert.LessOrEqual(t, q[i-1], q[i])
	}

	_, err = Quantiles(nil, 3)
	require.ErrorIs(t, err, ErrEmpty)
	_, err = Quantiles([]float64{1}, 0)
	require.Error(t, err)
}

func TestStandardScaler(t *testing.T) {
	s := NewStandardScaler()
	out := s.FitTransform([][]float64{{1, 7}, {3, 7}})
	assert.Equal(t, [][]float64{{-1, 0}, {1, 0}}, out)
	assert.Equal(t, []float64{2, 7}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Std)

	require.ErrorIs(t, NewStandardScaler().Fit(nil), ErrEmpty)
	unfitted := NewStandardScaler()
	in := [][]float64{{4}}
	assert.Equal(t, in, unfitted.Transform(in))
}
