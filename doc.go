// Package tabprep prepares tabular train/test data for regression models.
//
// tabprep takes a training table and a test table with overlapping columns,
// learns every preprocessing parameter from the training table only, and
// produces two numeric matrices with identical, identically ordered columns.
//
// # Features
//
// - Mean imputation and z-score standardization of numeric columns
// - One-hot encoding of categorical columns with the first level dropped
// - Alignment of the encoded test matrix to the training columns
// - Reporting of unseen levels, degenerate columns and skipped names
// - Ordinary least squares and ridge regression with R², MSE, RMSE and MAE
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/tabprep/preprocessing"
//	    "github.com/YuminosukeSato/tabprep/table"
//	)
//
//	func main() {
//	    train, err := table.ReadCSVFile("train.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    test, err := table.ReadCSVFile("test.csv", table.WithSchema(train.Schema()))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    p := preprocessing.NewPipeline(
//	        preprocessing.WithTarget("points_scored"),
//	        preprocessing.WithKeep("pos_team", "opponent", "year", "week"),
//	    )
//	    res, err := p.Run(train, test)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.Train.Names())
//	}
//
// # Packages
//
//   - table: named numeric and categorical columns, CSV loading
//   - preprocessing: imputer, scaler, encoder, column reconciliation and the Pipeline
//   - linear: LinearRegression and Ridge
//   - metrics: regression metrics
//   - pkg/errors, pkg/log: error types and structured logging
//
// The cmd/tabprep command wires these together for CSV files.
package tabprep
