package preprocessing

import "github.com/YuminosukeSato/tabprep/pkg/log"

// UnknownLevels はテスト側にだけ現れた水準の扱い
type UnknownLevels int

const (
	// UnknownIgnore は未知水準の指示変数列を捨てて Report に記録する
	UnknownIgnore UnknownLevels = iota
	// UnknownError は未知水準があれば UnknownLevelError を返す
	UnknownError
)

// ZeroVariance は訓練データで分散0の数値列の扱い
type ZeroVariance int

const (
	// ZeroVarianceZero は標準化後の値を全行 0 にする
	ZeroVarianceZero ZeroVariance = iota
	// ZeroVarianceError は DegenerateColumnError を返す
	ZeroVarianceError
)

type config struct {
	target          string
	exclude         []string
	encode          []string
	encodeAll       bool
	keep            []string
	maxMissingRatio float64
	alignToTest     bool
	unknownLevels   UnknownLevels
	zeroVariance    ZeroVariance
	strict          bool
	sanitize        bool
	logger          log.Logger
}

func defaultConfig() config {
	return config{
		encodeAll: true,
		sanitize:  true,
	}
}

// Option はPipelineの設定を変更する関数
type Option func(*config)

// WithTarget は目的変数の列名を設定する
// 指定しない場合は目的変数なしで学習し、Result と Transformed の Target は nil になる
func WithTarget(name string) Option {
	return func(c *config) {
		c.target = name
	}
}

// WithExclude は特徴量から除外する列を追加する
// テーブルに存在しない名前はログに記録して無視する（WithStrictSchema では SchemaError）
func WithExclude(names ...string) Option {
	return func(c *config) {
		c.exclude = append(c.exclude, names...)
	}
}

// WithEncode は one-hot 符号化するカテゴリ列を指定する
// 指定しない場合は全てのカテゴリ列を符号化する
func WithEncode(names ...string) Option {
	return func(c *config) {
		c.encodeAll = false
		c.encode = append(c.encode, names...)
	}
}

// WithoutEncoding はカテゴリ列を一切符号化しない
func WithoutEncoding() Option {
	return func(c *config) {
		c.encodeAll = false
		c.encode = nil
	}
}

// WithKeep は変換前にそのまま取り出しておく識別子列を指定する
// これらの列は行列には含まれない
func WithKeep(names ...string) Option {
	return func(c *config) {
		c.keep = append(c.keep, names...)
	}
}

// WithMaxMissingRatio は欠損率が ratio 以上の訓練列を捨てる。0 で無効
func WithMaxMissingRatio(ratio float64) Option {
	return func(c *config) {
		c.maxMissingRatio = ratio
	}
}

// WithAlignToTest はテストテーブルに無い訓練列を学習前に捨てる（目的変数は除く）
func WithAlignToTest(align bool) Option {
	return func(c *config) {
		c.alignToTest = align
	}
}

// WithUnknownLevels は未知水準の扱いを設定する
func WithUnknownLevels(policy UnknownLevels) Option {
	return func(c *config) {
		c.unknownLevels = policy
	}
}

// WithZeroVariance は分散0の列の扱いを設定する
func WithZeroVariance(policy ZeroVariance) Option {
	return func(c *config) {
		c.zeroVariance = policy
	}
}

// WithStrictSchema はスキーマの不一致をエラーにするかどうかを設定する
func WithStrictSchema(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}

// WithSanitizeNames は出力列名の英数字以外を "_" に置き換えるかどうかを設定する
func WithSanitizeNames(sanitize bool) Option {
	return func(c *config) {
		c.sanitize = sanitize
	}
}

// WithLogger はPipelineが使うロガーを設定する
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
