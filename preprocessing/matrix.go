package preprocessing

import (
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Matrix は列名付きの行優先 float64 行列です。
// gonum の mat.Matrix を実装しますが、mat.Dense と異なり 0 行の行列を表現できます。
type Matrix struct {
	names []string
	index map[string]int
	rows  int
	data  []float64
}

var _ mat.Matrix = (*Matrix)(nil)

// NewMatrix は rows 行、len(names) 列のゼロ行列を作成します。
func NewMatrix(rows int, names []string) *Matrix {
	m := &Matrix{
		names: append([]string(nil), names...),
		rows:  rows,
		data:  make([]float64, rows*len(names)),
	}
	m.reindex()
	return m
}

func (m *Matrix) reindex() {
	m.index = make(map[string]int, len(m.names))
	for j, n := range m.names {
		if _, dup := m.index[n]; !dup {
			m.index[n] = j
		}
	}
}

// Dims は行数と列数を返します。
func (m *Matrix) Dims() (r, c int) {
	return m.rows, len(m.names)
}

// At は (i, j) 要素を返します。範囲外の場合は mat と同様に panic します。
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= len(m.names) {
		panic(mat.ErrColAccess)
	}
	return m.data[i*len(m.names)+j]
}

// T は転置ビューを返します。
func (m *Matrix) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// Set は (i, j) 要素に v を書き込みます。
func (m *Matrix) Set(i, j int, v float64) {
	if i < 0 || i >= m.rows {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= len(m.names) {
		panic(mat.ErrColAccess)
	}
	m.data[i*len(m.names)+j] = v
}

// Names は列名のコピーを返します。
func (m *Matrix) Names() []string {
	return append([]string(nil), m.names...)
}

// ColIndex は列名に対応する列番号を返します。存在しない場合は -1。
func (m *Matrix) ColIndex(name string) int {
	if j, ok := m.index[name]; ok {
		return j
	}
	return -1
}

// Col は指定した列の値をコピーして返します。
func (m *Matrix) Col(name string) ([]float64, bool) {
	j := m.ColIndex(name)
	if j < 0 {
		return nil, false
	}
	out := make([]float64, m.rows)
	c := len(m.names)
	for i := range out {
		out[i] = m.data[i*c+j]
	}
	return out, true
}

// RawRow は i 行目のスライスを返します。返り値は行列のストレージを共有します。
func (m *Matrix) RawRow(i int) []float64 {
	c := len(m.names)
	return m.data[i*c : (i+1)*c]
}

// Dense は gonum の *mat.Dense に変換します。
// 行数または列数が 0 の場合は mat.Dense を作れないため nil を返します。
func (m *Matrix) Dense() *mat.Dense {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil
	}
	return mat.NewDense(r, c, append([]float64(nil), m.data...))
}

// Rename は列名を置き換えた新しい行列を返します。値はコピーされます。
func (m *Matrix) Rename(names []string) (*Matrix, error) {
	if len(names) != len(m.names) {
		return nil, errors.NewDimensionError("Matrix.Rename", len(m.names), len(names), 1)
	}
	out := &Matrix{
		names: append([]string(nil), names...),
		rows:  m.rows,
		data:  append([]float64(nil), m.data...),
	}
	out.reindex()
	return out, nil
}

// matrixFrom は任意の mat.Matrix を列名付き Matrix にコピーします。
// names が nil の場合、入力が *Matrix ならその列名を引き継ぎます。
func matrixFrom(X mat.Matrix, names []string) *Matrix {
	r, c := X.Dims()
	if names == nil {
		if src, ok := X.(*Matrix); ok {
			names = src.names
		} else {
			names = make([]string, c)
		}
	}
	out := NewMatrix(r, names)
	for i := 0; i < r; i++ {
		row := out.RawRow(i)
		for j := 0; j < c; j++ {
			row[j] = X.At(i, j)
		}
	}
	return out
}

// HStack は行数が等しい行列を横方向に連結します。
func HStack(ms ...*Matrix) (*Matrix, error) {
	if len(ms) == 0 {
		return NewMatrix(0, nil), nil
	}
	rows := ms[0].rows
	var names []string
	for _, m := range ms {
		if m.rows != rows {
			return nil, errors.NewDimensionError("HStack", rows, m.rows, 0)
		}
		names = append(names, m.names...)
	}
	out := NewMatrix(rows, names)
	for i := 0; i < rows; i++ {
		dst := out.RawRow(i)
		off := 0
		for _, m := range ms {
			off += copy(dst[off:], m.RawRow(i))
		}
	}
	return out, nil
}
