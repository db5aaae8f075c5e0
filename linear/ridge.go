package linear

import (
	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// Ridge は L2 正則化付きの線形回帰モデル
// (XᵀX + αI) w = Xᵀy をコレスキー分解で解く。切片は正則化しない
type Ridge struct {
	linearModel

	// Alpha は正則化の強さ
	Alpha float64
}

var _ model.LinearModel = (*Ridge)(nil)

// NewRidge は新しいRidge回帰モデルを作成する
//
// 使用例:
//
//	ridge := linear.NewRidge(1.0)
//	err := ridge.Fit(X, y)
//	pred, err := ridge.Predict(XTest)
func NewRidge(alpha float64, opts ...Option) *Ridge {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Ridge{linearModel: linearModel{name: "Ridge", opts: o}, Alpha: alpha}
}

// Fit はモデルを訓練データで学習させる
func (rg *Ridge) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "Ridge.Fit")
	rg.Reset()

	if rg.Alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", rg.Alpha)
	}

	d, err := rg.prepare(X, y)
	if err != nil {
		return err
	}
	_, c := d.X.Dims()

	// A = XᵀX + αI
	a := mat.NewSymDense(c, nil)
	a.SymOuterK(1, d.X.T())
	for j := 0; j < c; j++ {
		a.SetSym(j, j, a.At(j, j)+rg.Alpha)
	}

	var xty mat.Dense
	xty.Mul(d.X.T(), d.y)

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return errors.NewModelError("Ridge.Fit", "singular matrix", errors.ErrSingularMatrix)
	}
	var w mat.Dense
	if err := chol.SolveTo(&w, &xty); err != nil {
		return errors.NewModelError("Ridge.Fit", "ill-conditioned matrix", err)
	}

	rg.Logger().Debug("Ridge fitted",
		log.ModelNameKey, "Ridge",
		log.RegularizationKey, rg.Alpha,
		log.FeaturesKey, c,
	)
	return rg.finish(&w, d)
}
