package preprocessing

import (
	"fmt"
	"time"

	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
	"github.com/YuminosukeSato/tabprep/table"
)

// Pipeline は訓練テーブルから補完・標準化・one-hot 符号化の統計量を学習し、
// 訓練・テストの両テーブルを同じ列構成の行列に変換する。
//
// 1つの Pipeline は1つの訓練テーブルに対応する。Fit の後、Transform は何度でも呼べる。
// 並行に使う場合は呼び出し側で排他制御すること。
type Pipeline struct {
	model.BaseEstimator

	cfg config

	imputer *MeanImputer
	scaler  *StandardScaler
	encoder *OneHotEncoder

	stats     *FittedStats
	fitReport Report
}

// FittedStats は訓練テーブルから学習した統計量
type FittedStats struct {
	// Target は目的変数の列名。指定が無い場合は空
	Target string
	// Schema は訓練テーブル全体のスキーマ
	Schema *table.ColumnSchema

	// Numeric は数値特徴量の列名（テーブル順）
	Numeric []string
	// ImputeMean は補完に使う非欠損値の平均
	ImputeMean []float64
	// ScaleMean と ScaleStd は補完後の母平均と母標準偏差
	ScaleMean []float64
	ScaleStd  []float64
	// Degenerate は分散0の数値列
	Degenerate []string

	// Encoded は one-hot 符号化するカテゴリ列（テーブル順）
	Encoded []string
	// Levels は各符号化列の水準（ソート済み、先頭が基準水準）
	Levels [][]string

	// Passthrough は符号化しないカテゴリ列、Keep は識別子列
	Passthrough []string
	Keep        []string

	// RawColumns は名前の置換前の出力列名、Columns は最終的な出力列名
	RawColumns []string
	Columns    []string
}

// Baseline は符号化列 j の基準水準を返す
func (s *FittedStats) Baseline(j int) (string, bool) {
	if len(s.Levels[j]) == 0 {
		return "", false
	}
	return s.Levels[j][0], true
}

// Report は学習・変換中に行われた列の除外や補正の記録
type Report struct {
	// SparseDropped は欠損率が閾値以上で除外した訓練列
	SparseDropped []string
	// AlignedDropped はテストテーブルに無いため除外した訓練列
	AlignedDropped []string
	// SkippedNames はテーブルに存在しなかった除外・識別子・符号化の指定
	SkippedNames []string
	// Passthrough は符号化せずに行列から外したカテゴリ列
	Passthrough []string
	// Degenerate は分散0で全行 0 に標準化した列
	Degenerate []string
	// AllMissing は訓練で全行欠損だったため 0 で補完した列
	AllMissing []string
	// IgnoredColumns は訓練スキーマに無いため無視したテスト列
	IgnoredColumns []string
	// UnseenLevels は訓練に無かった水準（列名→水準）
	UnseenLevels map[string][]string
	// AddedColumns はテスト側に 0 で補った指示変数列
	AddedColumns []string
	// DroppedColumns はテスト側から捨てた指示変数列
	DroppedColumns []string
}

// Transformed は1つのテーブルを変換した結果
type Transformed struct {
	X      *Matrix
	Target []float64
	Keep   *table.Table

	IgnoredColumns []string
	UnseenLevels   map[string][]string
	AddedColumns   []string
	DroppedColumns []string
}

// Result は Run の結果
type Result struct {
	Train       *Matrix
	TrainTarget []float64
	Test        *Matrix
	TestTarget  []float64
	TrainKeep   *table.Table
	TestKeep    *table.Table
	Report      Report
}

// NewPipeline は新しいPipelineを作成する
//
// 使用例:
//
//	p := preprocessing.NewPipeline(
//	    preprocessing.WithTarget("points_scored"),
//	    preprocessing.WithKeep("pos_team", "opponent", "year", "week"),
//	)
//	res, err := p.Run(train, test)
func NewPipeline(opts ...Option) *Pipeline {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &Pipeline{cfg: cfg}
	p.SetLogger(cfg.logger)
	return p
}

func (p *Pipeline) logger() log.Logger {
	return p.Logger().With(log.ComponentKey, "Pipeline")
}

// Fit は訓練テーブルから統計量を学習する
func (p *Pipeline) Fit(train *table.Table) (err error) {
	defer errors.Recover(&err, "Pipeline.Fit")
	return p.fit(train, nil)
}

// Transform は学習済みの統計量でテーブルを変換する
// 出力の列は常に訓練時と同じ順序になる。エラーとログではテーブルを "input" と呼ぶ
func (p *Pipeline) Transform(t *table.Table) (_ *Transformed, err error) {
	defer errors.Recover(&err, "Pipeline.Transform")
	return p.transform(t, "input")
}

// Run は train で学習し、train と test を変換する。test は nil でもよい
func (p *Pipeline) Run(train, test *table.Table) (_ *Result, err error) {
	defer errors.Recover(&err, "Pipeline.Run")
	start := time.Now()

	var testNames map[string]struct{}
	if p.cfg.alignToTest && test != nil {
		testNames = make(map[string]struct{}, test.NumCols())
		for _, n := range test.Names() {
			testNames[n] = struct{}{}
		}
	}
	if err := p.fit(train, testNames); err != nil {
		return nil, err
	}

	tr, err := p.transform(train, "train")
	if err != nil {
		return nil, err
	}
	res := &Result{
		Train:       tr.X,
		TrainTarget: tr.Target,
		TrainKeep:   tr.Keep,
		Report:      p.fitReport.clone(),
	}

	if test != nil {
		te, err := p.transform(test, "test")
		if err != nil {
			return nil, err
		}
		res.Test = te.X
		res.TestTarget = te.Target
		res.TestKeep = te.Keep
		res.Report.IgnoredColumns = te.IgnoredColumns
		res.Report.UnseenLevels = te.UnseenLevels
		res.Report.AddedColumns = te.AddedColumns
		res.Report.DroppedColumns = te.DroppedColumns
	}

	_, c := res.Train.Dims()
	p.logger().Info("Pipeline run completed",
		log.OperationKey, log.OperationFitTransform,
		log.SamplesKey, train.NumRows(),
		log.FeaturesKey, c,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Stats は学習済みの統計量のコピーを返す。未学習の場合は nil
func (p *Pipeline) Stats() *FittedStats {
	if !p.IsFitted() {
		return nil
	}
	return p.stats.clone()
}

// Columns は出力列名を返す
func (p *Pipeline) Columns() []string {
	if !p.IsFitted() {
		return nil
	}
	return append([]string(nil), p.stats.Columns...)
}

// FitReport は学習時の Report を返す
func (p *Pipeline) FitReport() Report {
	return p.fitReport.clone()
}

func (p *Pipeline) fit(train *table.Table, testNames map[string]struct{}) error {
	const op = "Pipeline.Fit"
	p.Reset()
	if train == nil {
		return errors.NewValueError(op, "train table is nil")
	}
	cfg := p.cfg
	logger := p.logger().With(log.OperationKey, log.OperationFit, log.TableKey, "train")
	var report Report

	if cfg.target != "" {
		col, ok := train.Column(cfg.target)
		if !ok {
			return errors.NewMissingTargetColumnError(op, cfg.target)
		}
		if col.Kind() != table.Numeric {
			return errors.NewValidationError(cfg.target, "target column must be numeric", col.Kind().String())
		}
		if n := col.MissingCount(); n > 0 {
			return errors.NewValidationError(cfg.target, "target column has missing values", n)
		}
	}
	rows := train.NumRows()
	if rows == 0 {
		return errors.NewEmptyInputError(op, "train")
	}

	removed := map[string]bool{}
	if cfg.target != "" {
		removed[cfg.target] = true
	}
	skip := func(kind, name string) error {
		if cfg.strict {
			return errors.NewSchemaError(op, "train", name, kind+" column not found")
		}
		report.SkippedNames = append(report.SkippedNames, name)
		logger.Warn(kind+" column not found, skipped", log.ColumnKey, name)
		return nil
	}
	for _, n := range cfg.exclude {
		if !train.Has(n) {
			if err := skip("excluded", n); err != nil {
				return err
			}
			continue
		}
		removed[n] = true
	}
	var keep []string
	for _, n := range cfg.keep {
		if !train.Has(n) {
			if err := skip("keep", n); err != nil {
				return err
			}
			continue
		}
		removed[n] = true
		keep = append(keep, n)
	}

	if testNames != nil {
		for _, n := range train.Names() {
			if _, ok := testNames[n]; ok || removed[n] {
				continue
			}
			removed[n] = true
			report.AlignedDropped = append(report.AlignedDropped, n)
		}
		if len(report.AlignedDropped) > 0 {
			logger.Info("Dropped training columns absent from test table",
				log.ColumnsKey, report.AlignedDropped)
		}
	}

	if cfg.maxMissingRatio > 0 {
		for _, c := range train.Columns() {
			if removed[c.Name()] {
				continue
			}
			if ratio := c.MissingRatio(); ratio >= cfg.maxMissingRatio {
				removed[c.Name()] = true
				report.SparseDropped = append(report.SparseDropped, c.Name())
				logger.Info("Dropped sparse column",
					log.ColumnKey, c.Name(),
					log.MissingRatioKey, ratio,
				)
			}
		}
	}

	encodeSet := make(map[string]bool, len(cfg.encode))
	for _, n := range cfg.encode {
		c, ok := train.Column(n)
		if !ok {
			if err := skip("encode", n); err != nil {
				return err
			}
			continue
		}
		if c.Kind() != table.Categorical {
			return errors.NewSchemaError(op, "train", n, "cannot one-hot encode a numeric column")
		}
		encodeSet[n] = true
	}

	var numeric, encoded, passthrough []string
	for _, c := range train.Columns() {
		if removed[c.Name()] {
			continue
		}
		switch {
		case c.Kind() == table.Numeric:
			numeric = append(numeric, c.Name())
		case cfg.encodeAll || encodeSet[c.Name()]:
			encoded = append(encoded, c.Name())
		default:
			passthrough = append(passthrough, c.Name())
		}
	}
	if len(passthrough) > 0 {
		report.Passthrough = passthrough
		logger.Info("Categorical columns not encoded, returned as passthrough",
			log.ColumnsKey, passthrough)
	}

	X, err := numericBlock(op, train, "train", numeric)
	if err != nil {
		return err
	}
	p.imputer = NewMeanImputer()
	if err := p.imputer.Fit(X); err != nil {
		return err
	}
	for j, all := range p.imputer.AllMissing {
		if all {
			report.AllMissing = append(report.AllMissing, numeric[j])
			logger.Warn("All values missing, imputed with 0", log.ColumnKey, numeric[j])
		}
	}
	imputed, err := p.imputer.transform(X)
	if err != nil {
		return err
	}

	p.scaler = NewStandardScalerDefault()
	if err := p.scaler.Fit(imputed); err != nil {
		return err
	}
	for j, degenerate := range p.scaler.Degenerate {
		if !degenerate {
			continue
		}
		if cfg.zeroVariance == ZeroVarianceError {
			return errors.NewDegenerateColumnError(op, numeric[j], p.scaler.Mean[j])
		}
		report.Degenerate = append(report.Degenerate, numeric[j])
		logger.Warn("Zero variance column standardized to zeros", log.ColumnKey, numeric[j])
	}

	cats, err := categoricalBlock(op, train, "train", encoded)
	if err != nil {
		return err
	}
	p.encoder = NewOneHotEncoder(true)
	if err := p.encoder.Fit(cats...); err != nil {
		return err
	}

	raw := append(append([]string{}, numeric...), p.encoder.GetFeatureNamesOut()...)
	columns, err := SanitizeNames(raw, cfg.sanitize)
	if err != nil {
		return err
	}

	p.stats = &FittedStats{
		Target:      cfg.target,
		Schema:      train.Schema(),
		Numeric:     numeric,
		ImputeMean:  append([]float64(nil), p.imputer.Means...),
		ScaleMean:   append([]float64(nil), p.scaler.Mean...),
		ScaleStd:    append([]float64(nil), p.scaler.Scale...),
		Degenerate:  report.Degenerate,
		Encoded:     encoded,
		Levels:      p.encoder.Categories,
		Passthrough: passthrough,
		Keep:        keep,
		RawColumns:  raw,
		Columns:     columns,
	}
	p.fitReport = report
	p.SetFitted()

	logger.Info("Pipeline fitted",
		log.SamplesKey, rows,
		log.FeaturesKey, len(columns),
		log.TargetKey, cfg.target,
	)
	return nil
}

func (p *Pipeline) transform(t *table.Table, name string) (*Transformed, error) {
	const op = "Pipeline.Transform"
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Transform")
	}
	if t == nil {
		return nil, errors.NewValueError(op, name+" table is nil")
	}
	st := p.stats
	logger := p.logger().With(log.OperationKey, log.OperationTransform, log.TableKey, name)
	out := &Transformed{}

	for _, n := range t.Names() {
		if !st.Schema.Has(n) {
			out.IgnoredColumns = append(out.IgnoredColumns, n)
		}
	}
	if len(out.IgnoredColumns) > 0 {
		if p.cfg.strict {
			return nil, errors.NewSchemaMismatchError(op, out.IgnoredColumns)
		}
		logger.Warn("Columns absent from training schema ignored", log.ColumnsKey, out.IgnoredColumns)
	}

	X, err := numericBlock(op, t, name, st.Numeric)
	if err != nil {
		return nil, err
	}
	cats, err := categoricalBlock(op, t, name, st.Encoded)
	if err != nil {
		return nil, err
	}

	imputed, err := p.imputer.transform(X)
	if err != nil {
		return nil, err
	}
	scaled, err := p.scaler.transform(imputed)
	if err != nil {
		return nil, err
	}

	known := NewMatrix(t.NumRows(), nil)
	var unseen []Indicator
	if len(cats) > 0 {
		observed, inds, err := p.encoder.EncodeObserved(cats...)
		if err != nil {
			return nil, err
		}
		known, unseen = p.splitObserved(observed, inds)
	}
	combined, err := HStack(scaled, known)
	if err != nil {
		return nil, err
	}

	rec := Reconcile(st.RawColumns, combined.Names())
	out.AddedColumns = rec.Add
	for _, ind := range unseen {
		out.DroppedColumns = append(out.DroppedColumns, ind.Name())
	}
	if len(unseen) > 0 {
		if err := p.reportUnseen(op, logger, out, unseen, cats); err != nil {
			return nil, err
		}
	}

	aligned, err := rec.Apply(combined).Rename(st.Columns)
	if err != nil {
		return nil, err
	}
	r, c := aligned.Dims()
	if err := errors.CheckMatrix(op, aligned, r, c); err != nil {
		return nil, err
	}
	out.X = aligned

	if st.Target != "" {
		if col, ok := t.Column(st.Target); ok {
			if col.Kind() != table.Numeric {
				return nil, errors.NewValidationError(st.Target, "target column must be numeric", col.Kind().String())
			}
			if n := col.MissingCount(); n > 0 {
				return nil, errors.NewValidationError(st.Target, "target column has missing values", n)
			}
			out.Target = append([]float64(nil), col.Floats()...)
		}
	}

	var keep []string
	for _, n := range append(append([]string{}, st.Keep...), st.Passthrough...) {
		if t.Has(n) {
			keep = append(keep, n)
		} else {
			logger.Debug("Passthrough column not found", log.ColumnKey, n)
		}
	}
	kt, err := t.Select(keep...)
	if err != nil {
		return nil, err
	}
	out.Keep = kt.Clone()

	logger.Debug("Table transformed",
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return out, nil
}

// splitObserved は独立に符号化した指示変数列を、学習済みの (列, 水準) と一致するものと
// 訓練に無かったものに分ける。学習済みの列は訓練時の列名で返す
// 列名 "<column>_<level>" は別の列や数値列の名前と重なりうるため、名前では照合しない
func (p *Pipeline) splitObserved(observed *Matrix, inds []Indicator) (*Matrix, []Indicator) {
	trained := make(map[Indicator]string, p.encoder.NOutputs)
	offset := len(p.stats.Numeric)
	for k, ind := range p.encoder.Indicators() {
		trained[ind] = p.stats.RawColumns[offset+k]
	}

	var (
		names  []string
		src    []int
		unseen []Indicator
	)
	for k, ind := range inds {
		if raw, ok := trained[ind]; ok {
			names = append(names, raw)
			src = append(src, k)
		} else {
			unseen = append(unseen, ind)
		}
	}

	rows, _ := observed.Dims()
	known := NewMatrix(rows, names)
	for i := 0; i < rows; i++ {
		in := observed.RawRow(i)
		dst := known.RawRow(i)
		for k, j := range src {
			dst[k] = in[j]
		}
	}
	return known, unseen
}

// reportUnseen は訓練に無かった水準を列ごとにまとめ、方針に従ってエラーまたは警告にする
func (p *Pipeline) reportUnseen(op string, logger log.Logger, out *Transformed, inds []Indicator, cats []*table.Column) error {
	unseen := make(map[string][]string)
	for _, ind := range inds {
		unseen[ind.Column] = append(unseen[ind.Column], ind.Level)
	}

	for _, c := range cats {
		levels, ok := unseen[c.Name()]
		if !ok {
			continue
		}
		if p.cfg.unknownLevels == UnknownError {
			return errors.NewUnknownLevelError(op, c.Name(), levels)
		}
		set := make(map[string]struct{}, len(levels))
		for _, l := range levels {
			set[l] = struct{}{}
		}
		affected := 0
		for _, v := range c.Strings() {
			if _, hit := set[v]; hit {
				affected++
			}
		}
		errors.Warn(errors.NewUnseenLevelWarning(c.Name(), levels, affected))
		logger.Warn("Unseen categorical levels encoded as baseline",
			log.ColumnKey, c.Name(),
			log.LevelsKey, levels,
			log.SamplesKey, affected,
		)
	}
	out.UnseenLevels = unseen
	return nil
}

// numericBlock は指定した数値列を行列にまとめる。欠損は NaN のまま
func numericBlock(op string, t *table.Table, tableName string, names []string) (*Matrix, error) {
	X := NewMatrix(t.NumRows(), names)
	for j, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, errors.NewSchemaError(op, tableName, n, "column not found")
		}
		if c.Kind() != table.Numeric {
			return nil, errors.NewSchemaError(op, tableName, n,
				fmt.Sprintf("expected %s column, got %s", table.Numeric, c.Kind()))
		}
		for i, v := range c.Floats() {
			X.Set(i, j, v)
		}
	}
	return X, nil
}

func categoricalBlock(op string, t *table.Table, tableName string, names []string) ([]*table.Column, error) {
	cols := make([]*table.Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, errors.NewSchemaError(op, tableName, n, "column not found")
		}
		if c.Kind() != table.Categorical {
			return nil, errors.NewSchemaError(op, tableName, n,
				fmt.Sprintf("expected %s column, got %s", table.Categorical, c.Kind()))
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func (s *FittedStats) clone() *FittedStats {
	out := *s
	out.Numeric = append([]string(nil), s.Numeric...)
	out.ImputeMean = append([]float64(nil), s.ImputeMean...)
	out.ScaleMean = append([]float64(nil), s.ScaleMean...)
	out.ScaleStd = append([]float64(nil), s.ScaleStd...)
	out.Degenerate = append([]string(nil), s.Degenerate...)
	out.Encoded = append([]string(nil), s.Encoded...)
	out.Levels = make([][]string, len(s.Levels))
	for j, l := range s.Levels {
		out.Levels[j] = append([]string(nil), l...)
	}
	out.Passthrough = append([]string(nil), s.Passthrough...)
	out.Keep = append([]string(nil), s.Keep...)
	out.RawColumns = append([]string(nil), s.RawColumns...)
	out.Columns = append([]string(nil), s.Columns...)
	return &out
}

func (r Report) clone() Report {
	out := r
	out.SparseDropped = append([]string(nil), r.SparseDropped...)
	out.AlignedDropped = append([]string(nil), r.AlignedDropped...)
	out.SkippedNames = append([]string(nil), r.SkippedNames...)
	out.Passthrough = append([]string(nil), r.Passthrough...)
	out.Degenerate = append([]string(nil), r.Degenerate...)
	out.AllMissing = append([]string(nil), r.AllMissing...)
	out.IgnoredColumns = append([]string(nil), r.IgnoredColumns...)
	out.AddedColumns = append([]string(nil), r.AddedColumns...)
	out.DroppedColumns = append([]string(nil), r.DroppedColumns...)
	if r.UnseenLevels != nil {
		out.UnseenLevels = make(map[string][]string, len(r.UnseenLevels))
		for k, v := range r.UnseenLevels {
			out.UnseenLevels[k] = append([]string(nil), v...)
		}
	}
	return out
}
