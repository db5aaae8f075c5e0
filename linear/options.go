package linear

// defaultParallelThreshold はこの行数以下では行列のコピーを逐次処理する
const defaultParallelThreshold = 1000

type options struct {
	fitIntercept      bool
	parallelThreshold int
	rcond             float64
}

func defaultOptions() options {
	return options{
		fitIntercept:      true,
		parallelThreshold: defaultParallelThreshold,
	}
}

// Option is a function that configures a linear model
type Option func(*options)

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(o *options) {
		o.fitIntercept = fit
	}
}

// WithParallelThreshold sets the row count above which the design matrix is
// prepared in parallel
func WithParallelThreshold(rows int) Option {
	return func(o *options) {
		o.parallelThreshold = rows
	}
}

// WithRcond sets the relative cutoff for small singular values in
// LinearRegression. Zero selects machine epsilon times max(rows, cols).
func WithRcond(rcond float64) Option {
	return func(o *options) {
		o.rcond = rcond
	}
}
