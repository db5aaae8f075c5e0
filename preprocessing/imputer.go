package preprocessing

import (
	"math"

	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MeanImputer は欠損値 (NaN) を訓練データの列平均で補完する
type MeanImputer struct {
	model.BaseEstimator

	// Means は各特徴量の非欠損値の平均
	Means []float64

	// AllMissing は訓練データで全行が欠損していた列
	// これらの列の平均は 0 として扱う
	AllMissing []bool

	// NFeatures は特徴量の数
	NFeatures int
}

var _ model.Transformer = (*MeanImputer)(nil)

// NewMeanImputer は新しいMeanImputerを作成する
func NewMeanImputer() *MeanImputer {
	return &MeanImputer{}
}

// Fit は各列の非欠損値の平均を計算する
func (m *MeanImputer) Fit(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "MeanImputer.Fit")

	r, c := X.Dims()
	if r == 0 {
		return errors.NewEmptyInputError("MeanImputer.Fit", "train")
	}

	m.NFeatures = c
	m.Means = make([]float64, c)
	m.AllMissing = make([]bool, c)

	vals := make([]float64, 0, r)
	for j := 0; j < c; j++ {
		vals = vals[:0]
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			m.AllMissing[j] = true
			continue
		}
		m.Means[j] = stat.Mean(vals, nil)
	}

	m.SetFitted()
	return nil
}

// Transform は欠損値を学習済みの平均で置き換えた行列を返す
// 入力は変更しない
func (m *MeanImputer) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "MeanImputer.Transform")
	out, err := m.transform(X)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FitTransform はFitとTransformを同時に実行する
func (m *MeanImputer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

func (m *MeanImputer) transform(X mat.Matrix) (*Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MeanImputer", "Transform")
	}
	_, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MeanImputer.Transform", m.NFeatures, c, 1)
	}

	out := matrixFrom(X, nil)
	for i := 0; i < out.rows; i++ {
		row := out.RawRow(i)
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = m.Means[j]
			}
		}
	}
	return out, nil
}
