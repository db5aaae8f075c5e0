package preprocessing

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/table"
)

// Indicator は one-hot の出力列1本に対応する (元の列, 水準) の組
type Indicator struct {
	Column string
	Level  string
}

// Name は出力列名 "<column>_<level>" を返す
func (ind Indicator) Name() string {
	return ind.Column + "_" + ind.Level
}

// OneHotEncoder はカテゴリ列を 0/1 の指示変数列に変換する
// DropFirst の場合、ソート順で最初の水準を基準水準として出力から外す（k 水準 → k-1 列）
// 欠損値 ("") は水準として扱わず、全指示変数 0 になる
type OneHotEncoder struct {
	model.BaseEstimator

	// Features は学習に使った列名
	Features []string

	// Categories は各特徴量の水準一覧（ソート済み、基準水準を含む）
	Categories [][]string

	// CategoryToIdx は各特徴量の水準→Categories 内インデックス
	CategoryToIdx []map[string]int

	// DropFirst は基準水準を落とすかどうか
	DropFirst bool

	// NFeatures は入力特徴量数
	NFeatures int

	// NOutputs は出力列数
	NOutputs int
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
//
// 使用例:
//
//	encoder := preprocessing.NewOneHotEncoder(true)
//	err := encoder.Fit(teamCol)
//	encoded, err := encoder.Transform(teamCol)
func NewOneHotEncoder(dropFirst bool) *OneHotEncoder {
	return &OneHotEncoder{DropFirst: dropFirst}
}

// Fit は訓練データの各カテゴリ列から水準を学習する
func (e *OneHotEncoder) Fit(cols ...*table.Column) (err error) {
	defer errors.Recover(&err, "OneHotEncoder.Fit")

	rows, err := checkCategorical("OneHotEncoder.Fit", cols)
	if err != nil {
		return err
	}
	if len(cols) > 0 && rows == 0 {
		return errors.NewEmptyInputError("OneHotEncoder.Fit", "train")
	}

	e.NFeatures = len(cols)
	e.Features = make([]string, len(cols))
	e.Categories = make([][]string, len(cols))
	e.CategoryToIdx = make([]map[string]int, len(cols))

	for j, c := range cols {
		e.Features[j] = c.Name()
		e.Categories[j] = observedLevels(c)

		categoryToIdx := make(map[string]int, len(e.Categories[j]))
		for idx, level := range e.Categories[j] {
			categoryToIdx[level] = idx
		}
		e.CategoryToIdx[j] = categoryToIdx
	}

	e.NOutputs = len(e.indicators())
	e.SetFitted()
	return nil
}

// Baseline は j 番目の特徴量の基準水準を返す
// DropFirst でない場合や水準が無い場合は false
func (e *OneHotEncoder) Baseline(j int) (string, bool) {
	if !e.DropFirst || len(e.Categories[j]) == 0 {
		return "", false
	}
	return e.Categories[j][0], true
}

// indicators は学習済みの出力列を列順・水準順に返す
func (e *OneHotEncoder) indicators() []Indicator {
	var out []Indicator
	for j, levels := range e.Categories {
		start := 0
		if _, ok := e.Baseline(j); ok {
			start = 1
		}
		for _, level := range levels[start:] {
			out = append(out, Indicator{Column: e.Features[j], Level: level})
		}
	}
	return out
}

// Indicators は学習済みの出力列を返す
func (e *OneHotEncoder) Indicators() []Indicator {
	if !e.IsFitted() {
		return nil
	}
	return e.indicators()
}

// GetFeatureNamesOut は変換後の特徴量の名前を返す
//
// 例:
//   - 入力列 team の水準が [A, B, C] の場合（DropFirst）
//   - 出力: ["team_B", "team_C"]
func (e *OneHotEncoder) GetFeatureNamesOut() []string {
	inds := e.Indicators()
	names := make([]string, len(inds))
	for i, ind := range inds {
		names[i] = ind.Name()
	}
	return names
}

// Transform は学習済みの水準だけを使って列を変換する
// 学習時に無かった水準は全指示変数 0 になる
func (e *OneHotEncoder) Transform(cols ...*table.Column) (_ *Matrix, err error) {
	defer errors.Recover(&err, "OneHotEncoder.Transform")
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	rows, err := e.checkInput("OneHotEncoder.Transform", cols)
	if err != nil {
		return nil, err
	}

	out := NewMatrix(rows, e.GetFeatureNamesOut())
	offset := 0
	for j, c := range cols {
		shift := 0
		if _, ok := e.Baseline(j); ok {
			shift = 1
		}
		width := len(e.Categories[j]) - shift
		for i, v := range c.Strings() {
			if v == table.MissingLevel {
				continue
			}
			if idx, ok := e.CategoryToIdx[j][v]; ok && idx >= shift {
				out.Set(i, offset+idx-shift, 1)
			}
		}
		offset += width
	}
	return out, nil
}

// EncodeObserved は学習済みの基準水準を使い、入力に実際に現れた水準で独立に符号化する
// 出力列は入力の列順・水準順で、学習時に無かった水準の列も含む
// 学習済みの列構成に揃えるには Reconcile を使う
func (e *OneHotEncoder) EncodeObserved(cols ...*table.Column) (_ *Matrix, _ []Indicator, err error) {
	defer errors.Recover(&err, "OneHotEncoder.EncodeObserved")
	if !e.IsFitted() {
		return nil, nil, errors.NewNotFittedError("OneHotEncoder", "EncodeObserved")
	}
	rows, err := e.checkInput("OneHotEncoder.EncodeObserved", cols)
	if err != nil {
		return nil, nil, err
	}

	var inds []Indicator
	var positions []map[string]int
	for j, c := range cols {
		baseline, hasBaseline := e.Baseline(j)
		pos := make(map[string]int)
		for _, level := range observedLevels(c) {
			if hasBaseline && level == baseline {
				continue
			}
			pos[level] = len(inds)
			inds = append(inds, Indicator{Column: c.Name(), Level: level})
		}
		positions = append(positions, pos)
	}

	names := make([]string, len(inds))
	for i, ind := range inds {
		names[i] = ind.Name()
	}
	out := NewMatrix(rows, names)
	for j, c := range cols {
		for i, v := range c.Strings() {
			if k, ok := positions[j][v]; ok {
				out.Set(i, k, 1)
			}
		}
	}
	return out, inds, nil
}

// String はエンコーダーの文字列表現を返す
func (e *OneHotEncoder) String() string {
	if !e.IsFitted() {
		return fmt.Sprintf("OneHotEncoder(drop_first=%t)", e.DropFirst)
	}
	return fmt.Sprintf("OneHotEncoder(drop_first=%t, n_features=%d, n_outputs=%d)",
		e.DropFirst, e.NFeatures, e.NOutputs)
}

func (e *OneHotEncoder) checkInput(op string, cols []*table.Column) (int, error) {
	if len(cols) != e.NFeatures {
		return 0, errors.NewDimensionError(op, e.NFeatures, len(cols), 1)
	}
	rows, err := checkCategorical(op, cols)
	if err != nil {
		return 0, err
	}
	for j, c := range cols {
		if c.Name() != e.Features[j] {
			return 0, errors.NewSchemaError(op, "", c.Name(),
				fmt.Sprintf("expected column '%s' at position %d", e.Features[j], j))
		}
	}
	return rows, nil
}

// checkCategorical は全列がカテゴリ型で同じ長さであることを確認し、行数を返す
func checkCategorical(op string, cols []*table.Column) (int, error) {
	rows := 0
	for j, c := range cols {
		if c.Kind() != table.Categorical {
			return 0, errors.NewSchemaError(op, "", c.Name(),
				fmt.Sprintf("expected %s column, got %s", table.Categorical, c.Kind()))
		}
		if j == 0 {
			rows = c.Len()
		} else if c.Len() != rows {
			return 0, errors.NewDimensionError(op, rows, c.Len(), 0)
		}
	}
	return rows, nil
}

// observedLevels は列に現れた非欠損の水準をソートして返す
func observedLevels(c *table.Column) []string {
	seen := make(map[string]struct{})
	for _, v := range c.Strings() {
		if v == table.MissingLevel {
			continue
		}
		seen[v] = struct{}{}
	}
	levels := make([]string, 0, len(seen))
	for level := range seen {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	return levels
}
