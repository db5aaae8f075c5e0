package model

import "github.com/YuminosukeSato/tabprep/pkg/log"

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not_fitted"
}

// BaseEstimator は全ての推定器・変換器の基底となる構造体
type BaseEstimator struct {
	state  EstimatorState
	logger log.Logger
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はモデルを学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}

// State は現在の学習状態を返す
func (e *BaseEstimator) State() EstimatorState {
	return e.state
}

// SetLogger は推定器が使うロガーを設定する。nil の場合はデフォルトに戻る
func (e *BaseEstimator) SetLogger(l log.Logger) {
	e.logger = l
}

// Logger は推定器に紐づくロガーを返す。
// 未設定の場合はパッケージのデフォルトプロバイダから取得する
func (e *BaseEstimator) Logger() log.Logger {
	if e.logger == nil {
		return log.GetLogger()
	}
	return e.logger
}
