package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"reviewml/pkg/data"
	"reviewml/pkg/loader"
	"reviewml/pkg/model"
)

// Evaluation is the outcome of fitting and scoring one sample.
type Evaluation struct {
	Accuracy   float64
	TrainSize  int
	TestSize   int
	Intercept  float64
	Slope      float64 // weight on the sentiment score
	LogLoss    float64 // mean cross-entropy on the training rows
	Iterations int
	F1         float64 // test-set F1 with POS as the positive class
}

// Trainer fits label ~ sentiment_score on a sample and scores it on a held-out split.
type Trainer struct {
	TestRatio float64 // share of the sample held out, rounded down; 0.25 when unset
	Solver    model.Solver
}

// Evaluate splits the records at idx into train and test with rnd, fits a
// logistic regression on train and returns test accuracy. An empty or
// single-class train or test split, or an unfittable predictor, returns
// data.ErrInsufficientData.
func (t Trainer) Evaluate(ctx context.Context, ds *data.Dataset, idx []int, rnd *rand.Rand) (Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}
	ratio := t.TestRatio
	if ratio <= 0 {
		ratio = 0.25
	}

	X, y := ds.Features(idx)
	xTrain, xTest, yTrain, yTest := loader.TrainTestSplit(X, y, ratio, rnd)
	ev := Evaluation{TrainSize: len(xTrain), TestSize: len(xTest)}
	if len(xTrain) == 0 || len(xTest) == 0 {
		return ev, fmt.Errorf("%w: sample of %d splits into %d train and %d test rows",
			data.ErrInsufficientData, len(idx), len(xTrain), len(xTest))
	}
	if singleClass(yTest) {
		return ev, fmt.Errorf("%w: all %d test rows share one label", data.ErrInsufficientData, len(yTest))
	}

	m := model.NewLogisticRegression(1, model.WithSolver(t.Solver), model.WithSeed(rnd.Int63()))
	if err := m.Fit(ctx, xTrain, yTrain); err != nil {
		return ev, err
	}

	truth := model.IntLabels(yTest)
	pred := m.Predict(xTest)
	ev.Accuracy = model.Accuracy(truth, pred)
	_, _, ev.F1 = model.NewConfusion(truth, pred).PrecisionRecallF1()
	ev.LogLoss = m.LogLoss(xTrain, yTrain)
	ev.Iterations = m.Iterations()
	var w []float64
	ev.Intercept, w = m.Coefficients()
	ev.Slope = w[0]
	return ev, nil
}

func singleClass(y []float64) bool {
	for _, v := range y[1:] {
		if v != y[0] {
			return false
		}
	}
	return true
}
