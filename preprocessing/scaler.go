package preprocessing

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// degenerateTol は標準偏差を 0 とみなす相対許容誤差
const degenerateTol = 1e-12

// StandardScaler は列ごとに平均0、標準偏差1へ変換する標準化スケーラー
// 標準偏差は母標準偏差 (ddof=0) を使う
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差。分散0の列は 0
	Scale []float64

	// Degenerate は分散が0だった列。変換後は全行 0 になる
	Degenerate []bool

	// NFeatures は特徴量の数
	NFeatures int

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool
}

var _ model.Transformer = (*StandardScaler)(nil)

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	err := scaler.Fit(X)
//	XScaled, err := scaler.Transform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから統計情報（平均、母標準偏差）を計算する
// X に NaN が含まれていてはならない（先に MeanImputer で補完すること）
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "StandardScaler.Fit")

	r, c := X.Dims()
	if r == 0 {
		return errors.NewEmptyInputError("StandardScaler.Fit", "train")
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	s.Degenerate = make([]bool, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			col[i] = X.At(i, j)
		}
		if err := errors.CheckNumericalStability("StandardScaler.Fit", col, j); err != nil {
			return err
		}

		mean, std := stat.PopMeanStdDev(col, nil)
		if std <= degenerateTol*math.Max(1, math.Abs(mean)) {
			s.Degenerate[j] = true
			std = 0
		}
		if s.WithMean {
			s.Mean[j] = mean
		}
		if s.WithStd {
			s.Scale[j] = std
		} else {
			s.Scale[j] = 1
		}
	}

	s.SetFitted()
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
// 分散0の列はどの入力値でも 0 を出力する
func (s *StandardScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "StandardScaler.Transform")
	out, err := s.transform(X)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *StandardScaler) transform(X mat.Matrix) (*Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	_, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	out := matrixFrom(X, nil)
	for i := 0; i < out.rows; i++ {
		row := out.RawRow(i)
		for j, v := range row {
			if s.WithStd && s.Degenerate[j] {
				row[j] = 0
				continue
			}
			row[j] = (v - s.Mean[j]) / s.Scale[j]
		}
	}
	return out, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
// 分散0の列は学習時の平均に戻る
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	_, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	out := matrixFrom(X, nil)
	for i := 0; i < out.rows; i++ {
		row := out.RawRow(i)
		for j, v := range row {
			row[j] = v*s.Scale[j] + s.Mean[j]
		}
	}
	return out, nil
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}
