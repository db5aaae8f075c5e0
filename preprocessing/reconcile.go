package preprocessing

// Reconciliation は符号化済み行列を訓練時の列構成に揃えるための差分
type Reconciliation struct {
	// Add は訓練にあって対象に無い列（訓練の列順）。0 で補う
	Add []string
	// Drop は対象にあって訓練に無い列（対象の列順）。捨てる
	Drop []string
	// Order は最終的な列順。常に訓練の列順と等しい
	Order []string
}

// Reconcile は訓練側と対象側の列名リストを比較して差分を計算する
// 入力の順序だけに依存する純粋関数
func Reconcile(train, target []string) Reconciliation {
	inTrain := make(map[string]struct{}, len(train))
	for _, n := range train {
		inTrain[n] = struct{}{}
	}
	inTarget := make(map[string]struct{}, len(target))
	for _, n := range target {
		inTarget[n] = struct{}{}
	}

	r := Reconciliation{Order: append([]string{}, train...)}
	for _, n := range train {
		if _, ok := inTarget[n]; !ok {
			r.Add = append(r.Add, n)
		}
	}
	for _, n := range target {
		if _, ok := inTrain[n]; !ok {
			r.Drop = append(r.Drop, n)
		}
	}
	return r
}

// Apply は m に差分を適用した新しい行列を返す
// Add の列は 0、それ以外は m の同名列の値を Order の順に並べる
func (r Reconciliation) Apply(m *Matrix) *Matrix {
	out := NewMatrix(m.rows, r.Order)
	src := make([]int, len(r.Order))
	for k, n := range r.Order {
		src[k] = m.ColIndex(n)
	}
	for i := 0; i < m.rows; i++ {
		in := m.RawRow(i)
		dst := out.RawRow(i)
		for k, j := range src {
			if j >= 0 {
				dst[k] = in[j]
			}
		}
	}
	return out
}

// Empty は差分が無いかどうかを返す
func (r Reconciliation) Empty() bool {
	return len(r.Add) == 0 && len(r.Drop) == 0
}
