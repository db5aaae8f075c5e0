package metrics

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
)

// 得点予測の誤差から各指標を手計算した値と比べる
func TestRegressionMetrics(t *testing.T) {
	tests := []struct {
		name   string
		points []float64
		pred   []float64
		mse    float64
		mae    float64
		r2     float64
	}{
		{
			name:   "exact predictions",
			points: []float64{14, 21, 28, 35},
			pred:   []float64{14, 21, 28, 35},
			mse:    0,
			mae:    0,
			r2:     1,
		},
		{
			// 誤差 [3, -3, 3, -3], 平均 24.5 からの偏差平方和 245
			name:   "symmetric misses",
			points: []float64{14, 21, 28, 35},
			pred:   []float64{17, 18, 31, 32},
			mse:    9,
			mae:    3,
			r2:     1 - 36.0/245.0,
		},
		{
			// 予測が平均のみなら R² は 0
			name:   "mean predictor",
			points: []float64{10, 20, 30},
			pred:   []float64{20, 20, 20},
			mse:    200.0 / 3.0,
			mae:    20.0 / 3.0,
			r2:     0,
		},
		{
			// 平均より悪い予測は R² が負になる
			name:   "worse than mean",
			points: []float64{10, 20, 30},
			pred:   []float64{30, 20, 10},
			mse:    800.0 / 3.0,
			mae:    40.0 / 3.0,
			r2:     -3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(tt.points)
			yTrue := mat.NewVecDense(n, tt.points)
			yPred := mat.NewVecDense(n, tt.pred)

			mse, err := MSE(yTrue, yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.mse, mse, 1e-9)

			rmse, err := RMSE(yTrue, yPred)
			require.NoError(t, err)
			assert.InDelta(t, math.Sqrt(tt.mse), rmse, 1e-9)

			mae, err := MAE(yTrue, yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.mae, mae, 1e-9)

			r2, err := R2Score(yTrue, yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.r2, r2, 1e-9)

			fromMatrix, err := MSEMatrix(mat.NewDense(n, 1, tt.points), mat.NewDense(n, 1, tt.pred))
			require.NoError(t, err)
			assert.InDelta(t, mse, fromMatrix, 1e-12)
		})
	}
}

func TestRegressionMetrics_InvalidInput(t *testing.T) {
	short := mat.NewVecDense(2, []float64{1, 2})
	long := mat.NewVecDense(3, []float64{1, 2, 3})

	funcs := map[string]func(a, b *mat.VecDense) (float64, error){
		"MSE":     MSE,
		"RMSE":    RMSE,
		"MAE":     MAE,
		"R2Score": R2Score,
	}
	for name, fn := range funcs {
		t.Run(name, func(t *testing.T) {
			_, err := fn(short, long)
			var dim *errors.DimensionError
			assert.True(t, errors.As(err, &dim))
		})
	}

	t.Run("MSEMatrix", func(t *testing.T) {
		_, err := MSEMatrix(mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil))
		var value *errors.ValueError
		assert.True(t, errors.As(err, &value))

		_, err = MSEMatrix(mat.NewDense(2, 1, nil), mat.NewDense(3, 1, nil))
		var dim *errors.DimensionError
		assert.True(t, errors.As(err, &dim))
	})
}

func TestR2Score_ConstantTarget(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{3, 3, 3})
	_, err := R2Score(yTrue, mat.NewVecDense(3, []float64{3, 4, 3}))
	assert.True(t, errors.Is(err, ErrConstantTarget))
}

func TestEvaluate(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	yPred := mat.NewDense(4, 1, []float64{1.5, 2.5, 2.5, 3.5})

	rep, err := Evaluate(yTrue, yPred)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.N)
	assert.InDelta(t, 0.25, rep.MSE, 1e-12)
	assert.InDelta(t, 0.5, rep.RMSE, 1e-12)
	assert.InDelta(t, 0.5, rep.MAE, 1e-12)
	assert.InDelta(t, 0.8, rep.R2, 1e-12) // 1 - 1.0/5.0

	assert.Equal(t,
		"R-squared: 0.800\nMean Squared Error (MSE): 0.250\nRoot Mean Squared Error (RMSE): 0.500\nMean Absolute Error (MAE): 0.500",
		rep.String())

	_, err = Evaluate(yTrue, mat.NewDense(3, 1, nil))
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))
}

func TestEvaluate_ConstantTargetWarns(t *testing.T) {
	provider, _ := log.NewTestLoggerProvider(log.LevelWarn)
	log.SetProvider(provider)
	defer log.SetProvider(log.NewZerologProvider(os.Stderr))

	yTrue := mat.NewDense(3, 1, []float64{2, 2, 2})

	rep, err := Evaluate(yTrue, mat.NewDense(3, 1, []float64{2, 2, 2}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, rep.R2)

	rep, err = Evaluate(yTrue, mat.NewDense(3, 1, []float64{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, rep.R2)

	assert.Equal(t, 2, provider.Logger().CountLevel(log.LevelWarn))
	assert.True(t, provider.Logger().ContainsMessage("'R2Score' is ill-defined"))
}

// BenchmarkEvaluate は予測 1 万件の評価時間を測る
func BenchmarkEvaluate(b *testing.B) {
	const n = 10000
	yTrue := mat.NewDense(n, 1, nil)
	yPred := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		yTrue.Set(i, 0, float64(i%60))
		yPred.Set(i, 0, float64(i%60)+0.5*float64(i%7))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Evaluate(yTrue, yPred); err != nil {
			b.Fatal(err)
		}
	}
}
