// Command tabprep loads a training CSV and an optional test CSV, runs the
// preprocessing pipeline, fits a linear model on the encoded training matrix
// and prints fit metrics.
//
//	tabprep -train train.csv -test test.csv -target points_scored \
//	    -keep pos_team,opponent,year,week -model ridge -alpha 1
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/linear"
	"github.com/YuminosukeSato/tabprep/metrics"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
	"github.com/YuminosukeSato/tabprep/preprocessing"
	"github.com/YuminosukeSato/tabprep/table"
)

type config struct {
	train, test string
	target      string
	exclude     string
	encode      string
	keep        string
	maxMissing  float64
	align       bool
	model       string
	alpha       float64
	logLevel    string
	strict      bool
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	var c config
	fs := flag.NewFlagSet("tabprep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.train, "train", "", "training CSV file (required)")
	fs.StringVar(&c.test, "test", "", "test CSV file, parsed with the training schema")
	fs.StringVar(&c.target, "target", "", "target column (required)")
	fs.StringVar(&c.exclude, "exclude", "", "comma-separated columns to drop")
	fs.StringVar(&c.encode, "encode", "", "comma-separated categorical columns to one-hot encode (default: all)")
	fs.StringVar(&c.keep, "keep", "", "comma-separated identifier columns to set aside")
	fs.Float64Var(&c.maxMissing, "max-missing", 0, "drop training columns with at least this missing ratio (0 disables)")
	fs.BoolVar(&c.align, "align", false, "drop training columns absent from the test file")
	fs.StringVar(&c.model, "model", "linear", "model trainer: linear or ridge")
	fs.Float64Var(&c.alpha, "alpha", 1.0, "ridge regularization strength")
	fs.StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.BoolVar(&c.strict, "strict", false, "fail on schema mismatches instead of skipping")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if c.train == "" || c.target == "" {
		return nil, errors.NewValueError("tabprep", "-train and -target are required")
	}
	if c.model != "linear" && c.model != "ridge" {
		return nil, errors.NewValidationError("model", "must be linear or ridge", c.model)
	}
	return &c, nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (c *config) pipelineOptions() []preprocessing.Option {
	opts := []preprocessing.Option{
		preprocessing.WithTarget(c.target),
		preprocessing.WithExclude(splitList(c.exclude)...),
		preprocessing.WithKeep(splitList(c.keep)...),
		preprocessing.WithMaxMissingRatio(c.maxMissing),
		preprocessing.WithAlignToTest(c.align),
		preprocessing.WithStrictSchema(c.strict),
		preprocessing.WithLogger(log.GetLoggerWithName("Pipeline")),
	}
	if enc := splitList(c.encode); len(enc) > 0 {
		opts = append(opts, preprocessing.WithEncode(enc...))
	}
	if c.strict {
		opts = append(opts,
			preprocessing.WithUnknownLevels(preprocessing.UnknownError),
			preprocessing.WithZeroVariance(preprocessing.ZeroVarianceError),
		)
	}
	return opts
}

func (c *config) trainer() model.Regressor {
	if c.model == "ridge" {
		return linear.NewRidge(c.alpha)
	}
	return linear.NewLinearRegression()
}

func run(args []string, stdout, stderr io.Writer) error {
	c, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	// slog と zerolog を同じレベルにする
	if err := log.SetupLoggerTo(stderr, c.logLevel); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("tabprep")

	train, err := table.ReadCSVFile(c.train)
	if err != nil {
		return err
	}
	var test *table.Table
	if c.test != "" {
		if test, err = table.ReadCSVFile(c.test, table.WithSchema(train.Schema())); err != nil {
			return err
		}
	}
	logger.Info("Loaded tables",
		log.TableKey, "train",
		log.SamplesKey, train.NumRows(),
		log.FeaturesKey, train.NumCols(),
	)

	res, err := preprocessing.NewPipeline(c.pipelineOptions()...).Run(train, test)
	if err != nil {
		return err
	}
	printShape(stdout, "train", res.Train)
	if res.Test != nil {
		printShape(stdout, "test", res.Test)
	}
	for col, levels := range res.Report.UnseenLevels {
		fmt.Fprintf(stdout, "unseen levels in %s: %s\n", col, strings.Join(levels, ", "))
	}

	X := res.Train.Dense()
	if X == nil {
		return errors.NewValueError("tabprep", "no feature columns left after preprocessing")
	}
	y := mat.NewDense(len(res.TrainTarget), 1, res.TrainTarget)
	trainer := c.trainer()
	if err := trainer.Fit(X, y); err != nil {
		return err
	}

	if err := evaluate(stdout, "train", trainer, X, res.TrainTarget); err != nil {
		return err
	}
	if res.Test == nil {
		return nil
	}
	XTest := res.Test.Dense()
	if XTest == nil {
		logger.Warn("Test table has no rows, skipping evaluation")
		return nil
	}
	if res.TestTarget == nil {
		pred, err := trainer.Predict(XTest)
		if err != nil {
			return err
		}
		r, _ := pred.Dims()
		logger.Info("Predicted test rows without a target column",
			log.OperationKey, log.OperationPredict,
			log.SamplesKey, r,
		)
		fmt.Fprintf(stdout, "test predictions: %d (no target column)\n", r)
		return nil
	}
	return evaluate(stdout, "test", trainer, XTest, res.TestTarget)
}

func evaluate(w io.Writer, name string, p model.Predictor, X mat.Matrix, target []float64) error {
	pred, err := p.Predict(X)
	if err != nil {
		return err
	}
	rep, err := metrics.Evaluate(mat.NewDense(len(target), 1, target), pred)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "== %s ==\n%s\n", name, rep)
	log.GetLoggerWithName("tabprep").Info("Evaluated model",
		log.TableKey, name,
		log.OperationKey, log.OperationScore,
		log.R2ScoreKey, rep.R2,
		log.MSEKey, rep.MSE,
		log.MAEKey, rep.MAE,
	)
	return nil
}

func printShape(w io.Writer, name string, m *preprocessing.Matrix) {
	r, c := m.Dims()
	fmt.Fprintf(w, "%s: %d rows x %d columns\n", name, r, c)
}

// errorCode maps the error taxonomy to the log error codes.
func errorCode(err error) string {
	var (
		notFitted *errors.NotFittedError
		empty     *errors.EmptyInputError
		schema    *errors.SchemaError
		mismatch  *errors.SchemaMismatchError
	)
	switch {
	case errors.As(err, &notFitted):
		return log.ErrorNotFitted
	case errors.As(err, &empty), errors.Is(err, errors.ErrEmptyData):
		return log.ErrorEmptyData
	case errors.As(err, &schema), errors.As(err, &mismatch):
		return log.ErrorSchema
	default:
		return log.ErrorInvalidInput
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("tabprep failed", log.ErrAttr(err), log.ErrorCodeKey, errorCode(err))
		os.Exit(1)
	}
}
