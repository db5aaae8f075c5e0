package metrics

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrConstantTarget は yTrue の全変動が 0 で R² が定義できないことを表す
var ErrConstantTarget = errors.New("total sum of squares is zero (no variance in yTrue)")

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	a, b, err := pair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	// MSE = (1/n) * Σ(yTrue - yPred)²
	d := floats.Distance(a, b, 2)
	return d * d / float64(len(a)), nil
}

// MSEMatrix は行列形式の入力に対してMSEを計算する
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columnPair("MSEMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return MSE(t, p)
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	a, b, err := pair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Distance(a, b, 1) / float64(len(a)), nil
}

// R2Score は決定係数（R²）を計算する
// yTrue が定数の場合は ErrConstantTarget を返す
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	a, b, err := pair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	mean := stat.Mean(a, nil)
	var tss float64
	for _, v := range a {
		tss += (v - mean) * (v - mean)
	}
	rss := floats.Distance(a, b, 2)
	rss *= rss

	if tss == 0 {
		return 0, errors.Wrap(ErrConstantTarget, "R2Score")
	}
	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

// Report は回帰モデルの評価結果
type Report struct {
	N    int
	R2   float64
	MSE  float64
	RMSE float64
	MAE  float64
}

// String は評価結果を表示用に整形する
func (r Report) String() string {
	return fmt.Sprintf("R-squared: %.3f\nMean Squared Error (MSE): %.3f\nRoot Mean Squared Error (RMSE): %.3f\nMean Absolute Error (MAE): %.3f",
		r.R2, r.MSE, r.RMSE, r.MAE)
}

// Evaluate は R²・MSE・RMSE・MAE をまとめて計算する
// yTrue が定数の場合、R² は予測が完全一致なら 1、そうでなければ 0 とし、UndefinedMetricWarning を出す
func Evaluate(yTrue, yPred mat.Matrix) (Report, error) {
	t, p, err := columnPair("Evaluate", yTrue, yPred)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	rep.N = t.Len()
	if rep.MSE, err = MSE(t, p); err != nil {
		return Report{}, err
	}
	rep.RMSE = math.Sqrt(rep.MSE)
	if rep.MAE, err = MAE(t, p); err != nil {
		return Report{}, err
	}

	rep.R2, err = R2Score(t, p)
	if errors.Is(err, ErrConstantTarget) {
		rep.R2 = 0
		if rep.MSE == 0 {
			rep.R2 = 1
		}
		errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "constant yTrue", rep.R2))
	} else if err != nil {
		return Report{}, err
	}
	return rep, nil
}

func pair(op string, yTrue, yPred *mat.VecDense) ([]float64, []float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, nil, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return nil, nil, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	a := make([]float64, n)
	b := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = yTrue.AtVec(i)
		b[i] = yPred.AtVec(i)
	}
	return a, b, nil
}

func columnPair(op string, yTrue, yPred mat.Matrix) (*mat.VecDense, *mat.VecDense, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return nil, nil, errors.NewValueError(op, "empty matrix")
	}
	if rTrue != rPred || cTrue != cPred {
		return nil, nil, errors.NewDimensionError(op, rTrue, rPred, 0)
	}
	if cTrue != 1 {
		return nil, nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}

	t := mat.NewVecDense(rTrue, nil)
	p := mat.NewVecDense(rPred, nil)
	for i := 0; i < rTrue; i++ {
		t.SetVec(i, yTrue.At(i, 0))
		p.SetVec(i, yPred.At(i, 0))
	}
	return t, p, nil
}
