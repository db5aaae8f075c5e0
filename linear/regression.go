package linear

import (
	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/core/parallel"
	"github.com/YuminosukeSato/tabprep/metrics"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// machineEpsilon は float64 の計算機イプシロン
const machineEpsilon = 0x1p-52

// linearModel は LinearRegression と Ridge が共有する係数と予測処理
type linearModel struct {
	model.BaseEstimator

	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片
	NFeatures int           // 特徴量の数

	name string
	opts options
}

// Predict は入力データに対する予測を行う
// y = X * weights + intercept
func (m *linearModel) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, m.name+".Predict")
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError(m.name, "Predict")
	}

	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError(m.name+".Predict", m.NFeatures, c, 1)
	}
	if r == 0 {
		return nil, errors.NewModelError(m.name+".Predict", "empty data", errors.ErrEmptyData)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := m.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * m.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// GetWeights は学習された重み（係数）を返す
func (m *linearModel) GetWeights() []float64 {
	if m.Weights == nil {
		return nil
	}
	weights := make([]float64, m.Weights.Len())
	for i := range weights {
		weights[i] = m.Weights.AtVec(i)
	}
	return weights
}

// GetIntercept は学習された切片を返す
func (m *linearModel) GetIntercept() float64 {
	if !m.IsFitted() {
		return 0
	}
	return m.Intercept
}

// Score はモデルの決定係数（R²）を計算する
func (m *linearModel) Score(X, y mat.Matrix) (float64, error) {
	if !m.IsFitted() {
		return 0, errors.NewNotFittedError(m.name, "Score")
	}
	yPred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	pr, _ := yPred.Dims()
	yTrue := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yTrue.SetVec(i, y.At(i, 0))
	}
	pred := mat.NewVecDense(pr, nil)
	for i := 0; i < pr; i++ {
		pred.SetVec(i, yPred.At(i, 0))
	}
	return metrics.R2Score(yTrue, pred)
}

// centered は入力を検証し、切片を推定する場合は列平均を引いた X と y を返す
type centered struct {
	X     *mat.Dense
	y     *mat.Dense
	xMean []float64
	yMean float64
}

func (m *linearModel) prepare(X, y mat.Matrix) (*centered, error) {
	op := m.name + ".Fit"
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return nil, errors.NewDimensionError(op, r, ry, 0)
	}
	if cy != 1 {
		return nil, errors.NewValueError(op, "y must be a column vector")
	}
	if err := errors.CheckMatrix(op, X, r, c); err != nil {
		return nil, err
	}
	if err := errors.CheckMatrix(op, y, r, 1); err != nil {
		return nil, err
	}

	out := &centered{
		X:     mat.NewDense(r, c, nil),
		y:     mat.NewDense(r, 1, nil),
		xMean: make([]float64, c),
	}

	col := make([]float64, r)
	if m.opts.fitIntercept {
		for j := 0; j < c; j++ {
			for i := 0; i < r; i++ {
				col[i] = X.At(i, j)
			}
			out.xMean[j] = stat.Mean(col, nil)
		}
		for i := 0; i < r; i++ {
			col[i] = y.At(i, 0)
		}
		out.yMean = stat.Mean(col, nil)
	}

	// 行数が閾値を超える場合は行単位で並列にコピーする
	parallel.ParallelizeWithThreshold(r, m.opts.parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				out.X.Set(i, j, X.At(i, j)-out.xMean[j])
			}
			out.y.Set(i, 0, y.At(i, 0)-out.yMean)
		}
	})
	return out, nil
}

// finish は中心化した問題の解から重みと切片を設定する
func (m *linearModel) finish(w *mat.Dense, d *centered) error {
	c := len(d.xMean)
	weights := make([]float64, c)
	intercept := d.yMean
	for j := 0; j < c; j++ {
		weights[j] = w.At(j, 0)
		intercept -= d.xMean[j] * weights[j]
	}
	if err := errors.CheckNumericalStability(m.name+".Fit", weights, 0); err != nil {
		return err
	}
	if err := errors.CheckScalar(m.name+".Fit", intercept, 0); err != nil {
		return err
	}

	m.NFeatures = c
	m.Weights = mat.NewVecDense(c, weights)
	m.Intercept = intercept
	m.SetFitted()
	return nil
}

// LinearRegression は最小二乗法による線形回帰モデル
// 特異値分解で解くため、定数列や重複列を含むランク落ちの X でも最小ノルム解を返す
type LinearRegression struct {
	linearModel

	// Rank は学習時の計画行列の数値ランク
	Rank int
}

var _ model.LinearModel = (*LinearRegression)(nil)

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &LinearRegression{linearModel: linearModel{name: "LinearRegression", opts: o}}
}

// Fit はモデルを訓練データで学習させる
// min ||y - Xw - b||² を X の特異値分解で解く
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearRegression.Fit")
	lr.Reset()

	d, err := lr.prepare(X, y)
	if err != nil {
		return err
	}
	r, c := d.X.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(d.X, mat.SVDThin); !ok {
		return errors.NewModelError("LinearRegression.Fit", "SVD did not converge", errors.ErrSingularMatrix)
	}

	rcond := lr.opts.rcond
	if rcond <= 0 {
		rcond = float64(max(r, c)) * machineEpsilon
	}
	lr.Rank = svd.Rank(rcond)

	w := mat.NewDense(c, 1, nil)
	if lr.Rank > 0 {
		svd.SolveTo(w, d.y, lr.Rank)
	}
	if lr.Rank < c {
		lr.Logger().Debug("Design matrix is rank deficient",
			log.ModelNameKey, "LinearRegression",
			log.FeaturesKey, c,
			"rank", lr.Rank,
		)
	}
	return lr.finish(w, d)
}
