package loader

import "math/rand"

// TrainTestSplit splits X, Y into train and test sets by ratio using rnd.
// The test set gets int(n*testRatio) rows, rounded down.
func TrainTestSplit(X [][]float64, Y []float64, testRatio float64, rnd *rand.Rand) (XTrain, XTest [][]float64, YTrain, YTest []float64) {
	n := len(X)
	indices := rnd.Perm(n)
	nTest := int(float64(n) * testRatio)
	for i := range n {
		if i < nTest {
			XTest = append(XTest, X[indices[i]])
			YTest = append(YTest, Y[indices[i]])
		} else {
			XTrain = append(XTrain, X[indices[i]])
			YTrain = append(YTrain, Y[indices[i]])
		}
	}
	return
}

// ShuffleData shuffles X and Y in unison using rnd.
func ShuffleData(X [][]float64, Y []float64, rnd *rand.Rand) ([][]float64, []float64) {
	n := len(X)
	indices := rnd.Perm(n)
	XShuf := make([][]float64, n)
	YShuf := make([]float64, n)
	for i, idx := range indices {
		XShuf[i] = X[idx]
		YShuf[i] = Y[idx]
	}
	return XShuf, YShuf
}
