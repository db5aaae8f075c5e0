package preprocessing

import (
	"fmt"
	"regexp"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9]`)

// SanitizeName は英数字以外の文字を1文字ずつ "_" に置き換える
//
//	SanitizeName("team_A&M") == "team_A_M"
func SanitizeName(name string) string {
	return unsafeName.ReplaceAllString(name, "_")
}

// SanitizeNames は全ての列名を SanitizeName で変換する。
// sanitize が false の場合は変換せず、重複の確認だけを行う。
// 変換後に2つ以上の列が同じ名前になる場合は SchemaError を返す。
func SanitizeNames(names []string, sanitize bool) ([]string, error) {
	out := make([]string, len(names))
	seen := make(map[string]string, len(names))
	for i, n := range names {
		s := n
		if sanitize {
			s = SanitizeName(n)
		}
		if prev, dup := seen[s]; dup {
			return nil, errors.NewSchemaError("SanitizeNames", "", n,
				fmt.Sprintf("output name '%s' collides with column '%s'", s, prev))
		}
		seen[s] = n
		out[i] = s
	}
	return out, nil
}
