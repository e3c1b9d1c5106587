package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"

	"reviewml/pkg/NeuralNetwork"
	"reviewml/pkg/data"
	"reviewml/pkg/loader"
	"reviewml/pkg/optim"
	"reviewml/pkg/stats"
)

// Threshold is the decision boundary on p(POS). A probability of exactly
// Threshold predicts NEG.
const Threshold = 0.5

const (
	// minWeight floors the IRLS weights p(1-p) so saturated rows keep the Hessian positive definite.
	minWeight = 1e-10
	// parallelRows is the batch size above which PredictProba fans out across CPUs.
	parallelRows = 4096
)

var _ Classifier = (*LogisticRegression)(nil)

// LogisticRegression (binary) with sigmoid link and no regularisation.
type LogisticRegression struct {
	W []float64 // weights, in the units the solver trained on
	b float64   // bias

	Solver    Solver
	MaxIter   int     // Newton iterations or SGD epochs; 0 picks 25 or 200
	Tol       float64 // relative deviance change that ends Newton iterations
	Lr        float64 // SGD learning rate
	Momentum  float64 // SGD momentum
	BatchSize int     // SGD mini-batch size
	Seed      int64   // SGD batch shuffling

	scaler    *stats.StandardScaler // SGD only
	iters     int
	converged bool
}

// Option configures a LogisticRegression.
type Option func(*LogisticRegression)

func WithSolver(s Solver) Option         { return func(m *LogisticRegression) { m.Solver = s } }
func WithMaxIter(n int) Option           { return func(m *LogisticRegression) { m.MaxIter = n } }
func WithLearningRate(lr float64) Option { return func(m *LogisticRegression) { m.Lr = lr } }
func WithSeed(seed int64) Option         { return func(m *LogisticRegression) { m.Seed = seed } }

// NewLogisticRegression initializes a model for nFeatures predictors.
// Weights start at zero so fits are deterministic.
func NewLogisticRegression(nFeatures int, opts ...Option) *LogisticRegression {
	m := &LogisticRegression{
		W:         make([]float64, nFeatures),
		Solver:    Newton,
		Tol:       1e-8,
		Lr:        0.1,
		Momentum:  0.9,
		BatchSize: 32,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *LogisticRegression) maxIter() int {
	switch {
	case m.MaxIter > 0:
		return m.MaxIter
	case m.Solver == SGD:
		return 200
	default:
		return 25
	}
}

// Iterations returns the Newton iterations or SGD epochs the last Fit ran.
func (m *LogisticRegression) Iterations() int { return m.iters }

// Converged reports whether the last Newton fit met its tolerance. SGD fits
// always report false.
func (m *LogisticRegression) Converged() bool { return m.converged }

// Coefficients returns the intercept and weights on the original feature scale.
func (m *LogisticRegression) Coefficients() (intercept float64, weights []float64) {
	weights = make([]float64, len(m.W))
	intercept = m.b
	for j, w := range m.W {
		if m.scaler != nil {
			weights[j] = w / m.scaler.Std[j]
			intercept -= w * m.scaler.Mean[j] / m.scaler.Std[j]
		} else {
			weights[j] = w
		}
	}
	return intercept, weights
}

// SetCoefficients fixes the model on the original feature scale, bypassing Fit.
func (m *LogisticRegression) SetCoefficients(intercept float64, weights []float64) {
	m.W = append([]float64(nil), weights...)
	m.b = intercept
	m.scaler = nil
}

// PredictProba returns p(y=1) for each row of X.
// Large inputs are split across goroutines, one contiguous range per CPU.
func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	if m.scaler != nil {
		X = m.scaler.Transform(X)
	}
	out := make([]float64, len(X))
	if len(X) < parallelRows {
		m.probaRange(X, out, 0, len(X))
		return out
	}

	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (len(X) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, len(X))
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			m.probaRange(X, out, start, end)
		}(start, end)
	}
	wg.Wait()
	return out
}

func (m *LogisticRegression) probaRange(X [][]float64, out []float64, start, end int) {
	for i := start; i < end; i++ {
		sum := m.b
		for j, v := range X[i] {
			sum += m.W[j] * v
		}
		out[i] = NeuralNetwork.Sigmoid(sum)
	}
}

// Predict returns 1 where p(y=1) > Threshold and 0 otherwise.
func (m *LogisticRegression) Predict(X [][]float64) []int {
	return BinaryPredFromProba(m.PredictProba(X), Threshold)
}

// LogLoss returns the mean binary cross-entropy of the model on (X, y).
func (m *LogisticRegression) LogLoss(X [][]float64, y []float64) float64 {
	loss, _ := NeuralNetwork.BCE(y, m.PredictProba(X))
	return loss
}

// Fit estimates the weights from X and 0/1 targets y. It returns
// data.ErrInsufficientData when X is empty, y holds a single class, a
// predictor is constant, or the predictors are collinear (a singular first
// Newton step). Both solvers share these checks.
func (m *LogisticRegression) Fit(ctx context.Context, X [][]float64, y []float64) error {
	if len(X) != len(y) {
		return fmt.Errorf("logistic: %d rows but %d targets", len(X), len(y))
	}
	if len(X) == 0 {
		return fmt.Errorf("%w: no training rows", data.ErrInsufficientData)
	}
	pos := 0
	for i, row := range X {
		if len(row) != len(m.W) {
			return errors.New("feature count mismatch between model and batch data")
		}
		if y[i] == 1 {
			pos++
		}
	}
	if pos == 0 || pos == len(y) {
		return fmt.Errorf("%w: training rows hold a single class", data.ErrInsufficientData)
	}
	for j := range m.W {
		if constantColumn(X, j) {
			return fmt.Errorf("%w: predictor %d is constant over the training rows", data.ErrInsufficientData, j)
		}
	}

	m.iters, m.converged, m.scaler = 0, false, nil
	for j := range m.W {
		m.W[j] = 0
	}
	m.b = 0
	if m.Solver == SGD {
		return m.fitSGD(ctx, X, y)
	}
	return m.fitNewton(ctx, X, y)
}

func constantColumn(X [][]float64, j int) bool {
	for _, row := range X[1:] {
		if row[j] != X[0][j] {
			return false
		}
	}
	return true
}

// fitNewton maximises the likelihood by Newton-Raphson. Each step solves
// (XᵀWX) Δ = Xᵀ(y - p) with a Cholesky factorisation, where X carries a
// leading column of ones for the bias. It stops when the deviance changes by
// less than Tol relative to its size, after MaxIter steps, or when the
// Hessian stops being positive definite (complete separation).
func (m *LogisticRegression) fitNewton(ctx context.Context, X [][]float64, y []float64) error {
	p := len(m.W) + 1
	beta := make([]float64, p)
	feat := func(row []float64, a int) float64 {
		if a == 0 {
			return 1
		}
		return row[a-1]
	}
	dev := math.Inf(1)

	for it := 0; it < m.maxIter(); it++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		H := mat.NewSymDense(p, nil)
		g := mat.NewVecDense(p, nil)
		for i, row := range X {
			eta := beta[0]
			for j, v := range row {
				eta += beta[j+1] * v
			}
			pi := NeuralNetwork.Sigmoid(eta)
			w := math.Max(pi*(1-pi), minWeight)
			r := y[i] - pi
			for a := 0; a < p; a++ {
				xa := feat(row, a)
				g.SetVec(a, g.AtVec(a)+xa*r)
				for c := a; c < p; c++ {
					H.SetSym(a, c, H.At(a, c)+w*xa*feat(row, c))
				}
			}
		}

		var chol mat.Cholesky
		var step mat.VecDense
		ok := chol.Factorize(H)
		if ok {
			if err := chol.SolveVecTo(&step, g); err != nil {
				ok = false
			}
		}
		if !ok {
			if it == 0 {
				return fmt.Errorf("%w: predictors are constant or collinear", data.ErrInsufficientData)
			}
			break
		}

		next := make([]float64, p)
		for a := range beta {
			next[a] = beta[a] + step.AtVec(a)
			if math.IsNaN(next[a]) || math.IsInf(next[a], 0) {
				ok = false
			}
		}
		if !ok {
			break
		}
		copy(beta, next)
		m.b, m.W = beta[0], append(m.W[:0], beta[1:]...)
		m.iters = it + 1

		newDev := 2 * float64(len(y)) * m.LogLoss(X, y)
		if math.Abs(newDev-dev)/(math.Abs(newDev)+0.1) < m.Tol {
			m.converged = true
			break
		}
		dev = newDev
	}
	return nil
}

// fitSGD trains using mini-batch gradient descent on standardised features.
func (m *LogisticRegression) fitSGD(ctx context.Context, X [][]float64, y []float64) error {
	scaler := stats.NewStandardScaler()
	Xs := scaler.FitTransform(X)
	rnd := rand.New(rand.NewSource(m.Seed))
	opt := optim.NewMomentumSGD(m.Lr, m.Momentum)
	batch := max(m.BatchSize, 1)

	// Bias rides along as the last parameter so one optimizer updates both.
	params := make([]float64, len(m.W)+1)
	grads := make([]float64, len(params))
	for ep := 0; ep < m.maxIter(); ep++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		bx, by := loader.ShuffleData(Xs, y, rnd)
		for start := 0; start < len(bx); start += batch {
			end := min(start+batch, len(bx))
			copy(m.W, params[:len(m.W)])
			m.b = params[len(m.W)]

			// Forward Pass: probabilities on the scaled batch.
			pb := make([]float64, end-start)
			m.probaRange(bx[start:end], pb, 0, end-start)
			_, dy := NeuralNetwork.BCE(by[start:end], pb)

			// Backward Pass.
			for k := range grads {
				grads[k] = 0
			}
			for i, row := range bx[start:end] {
				for j, xij := range row {
					grads[j] += dy[i] * xij
				}
				grads[len(m.W)] += dy[i]
			}
			opt.Step(params, grads)
		}
		m.iters = ep + 1
	}
	copy(m.W, params[:len(m.W)])
	m.b = params[len(m.W)]
	m.scaler = scaler
	return nil
}
