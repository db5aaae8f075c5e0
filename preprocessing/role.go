package preprocessing

import "slices"

// Role は訓練スキーマの列が出力行列でどう扱われるか
type Role int

const (
	// RoleExcluded は目的変数・除外指定・識別子・疎な列・符号化しないカテゴリ列
	RoleExcluded Role = iota
	// RoleNumeric は補完と標準化を行う数値列
	RoleNumeric
	// RoleCategorical は one-hot 符号化するカテゴリ列
	RoleCategorical
)

func (r Role) String() string {
	switch r {
	case RoleNumeric:
		return "numeric"
	case RoleCategorical:
		return "categorical"
	default:
		return "excluded"
	}
}

// Role は訓練スキーマの列 name の役割を返す。訓練スキーマに無い列は false
func (s *FittedStats) Role(name string) (Role, bool) {
	if s.Schema == nil || !s.Schema.Has(name) {
		return RoleExcluded, false
	}
	switch {
	case slices.Contains(s.Numeric, name):
		return RoleNumeric, true
	case slices.Contains(s.Encoded, name):
		return RoleCategorical, true
	default:
		return RoleExcluded, true
	}
}
