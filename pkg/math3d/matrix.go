package math3d

import "fmt"

// Matrix is a dense rows×cols matrix stored row-major.
// The zero value is a 0x0 matrix.
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix returns a rows×cols zero matrix.
func NewMatrix(rows, cols int) (Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return Matrix{}, &DimensionError{Op: "new matrix", Want: "positive size", Got: dims(rows, cols)}
	}
	return Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}, nil
}

// MatrixFromRows builds a matrix from equally sized rows.
func MatrixFromRows(rows ...[]float64) (Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Matrix{}, &DimensionError{Op: "matrix from rows", Want: "positive size", Got: "empty"}
	}
	cols := len(rows[0])
	m := Matrix{rows: len(rows), cols: cols, data: make([]float64, 0, len(rows)*cols)}
	for i, r := range rows {
		if len(r) != cols {
			return Matrix{}, &DimensionError{
				Op:   fmt.Sprintf("matrix from rows: row %d", i),
				Want: fmt.Sprint(cols),
				Got:  fmt.Sprint(len(r)),
			}
		}
		m.data = append(m.data, r...)
	}
	return m, nil
}

// IdentityN returns the n×n identity matrix.
func IdentityN(n int) (Matrix, error) {
	m, err := NewMatrix(n, n)
	if err != nil {
		return Matrix{}, err
	}
	for i := range n {
		m.data[i*n+i] = 1
	}
	return m, nil
}

// Rows returns the number of rows.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m Matrix) Cols() int { return m.cols }

func (m Matrix) checkIndex(op string, row, col int) error {
	if row < 0 || row >= m.rows {
		return &IndexError{Op: op + " row", Index: row, Len: m.rows}
	}
	if col < 0 || col >= m.cols {
		return &IndexError{Op: op + " col", Index: col, Len: m.cols}
	}
	return nil
}

// At returns the element at (row, col).
func (m Matrix) At(row, col int) (float64, error) {
	if err := m.checkIndex("matrix at", row, col); err != nil {
		return 0, err
	}
	return m.data[row*m.cols+col], nil
}

// Set stores val at (row, col).
func (m Matrix) Set(row, col int, val float64) error {
	if err := m.checkIndex("matrix set", row, col); err != nil {
		return err
	}
	m.data[row*m.cols+col] = val
	return nil
}

func (m Matrix) at(row, col int) float64 {
	return m.data[row*m.cols+col]
}

// Mul returns m · b. The column count of m must equal the row count of b.
func (m Matrix) Mul(b Matrix) (Matrix, error) {
	if m.cols != b.rows {
		return Matrix{}, &DimensionError{Op: "matrix mul", Want: fmt.Sprintf("%d rows", m.cols), Got: dims(b.rows, b.cols)}
	}
	out := Matrix{rows: m.rows, cols: b.cols, data: make([]float64, m.rows*b.cols)}
	for r := range m.rows {
		for c := range b.cols {
			var sum float64
			for k := range m.cols {
				sum += m.at(r, k) * b.at(k, c)
			}
			out.data[r*out.cols+c] = sum
		}
	}
	return out, nil
}

// MulVector returns m · v for a column vector v of length Cols().
func (m Matrix) MulVector(v Vector) (Vector, error) {
	if m.cols != len(v) {
		return nil, &DimensionError{Op: "matrix mul vector", Want: fmt.Sprint(m.cols), Got: fmt.Sprint(len(v))}
	}
	out := make(Vector, m.rows)
	for r := range m.rows {
		var sum float64
		for k := range m.cols {
			sum += m.at(r, k) * v[k]
		}
		out[r] = sum
	}
	return out, nil
}

// Scale returns m with every element multiplied by s.
func (m Matrix) Scale(s float64) Matrix {
	out := Matrix{rows: m.rows, cols: m.cols, data: make([]float64, len(m.data))}
	for i, v := range m.data {
		out.data[i] = v * s
	}
	return out
}

// Transpose returns the cols×rows transpose.
func (m Matrix) Transpose() Matrix {
	out := Matrix{rows: m.cols, cols: m.rows, data: make([]float64, len(m.data))}
	for r := range m.rows {
		for c := range m.cols {
			out.data[c*out.cols+r] = m.at(r, c)
		}
	}
	return out
}

func (m Matrix) square(op string) error {
	if m.rows != m.cols || m.rows == 0 {
		return &DimensionError{Op: op, Want: "square", Got: dims(m.rows, m.cols)}
	}
	return nil
}

// Minor returns m with the given row and column removed.
func (m Matrix) Minor(row, col int) (Matrix, error) {
	if err := m.checkIndex("matrix minor", row, col); err != nil {
		return Matrix{}, err
	}
	if m.rows < 2 || m.cols < 2 {
		return Matrix{}, &DimensionError{Op: "matrix minor", Want: "at least 2x2", Got: dims(m.rows, m.cols)}
	}
	return m.minor(row, col), nil
}

func (m Matrix) minor(row, col int) Matrix {
	out := Matrix{rows: m.rows - 1, cols: m.cols - 1, data: make([]float64, 0, (m.rows-1)*(m.cols-1))}
	for r := range m.rows {
		if r == row {
			continue
		}
		for c := range m.cols {
			if c == col {
				continue
			}
			out.data = append(out.data, m.at(r, c))
		}
	}
	return out
}

// Determinant returns the determinant of a square matrix by Laplace
// expansion along the first row.
func (m Matrix) Determinant() (float64, error) {
	if err := m.square("matrix determinant"); err != nil {
		return 0, err
	}
	return m.det(), nil
}

func (m Matrix) det() float64 {
	switch m.rows {
	case 1:
		return m.data[0]
	case 2:
		return m.data[0]*m.data[3] - m.data[1]*m.data[2]
	}
	var sum float64
	sign := 1.0
	for c := range m.cols {
		if a := m.at(0, c); a != 0 {
			sum += sign * a * m.minor(0, c).det()
		}
		sign = -sign
	}
	return sum
}

// Cofactor returns the matrix of signed minors.
func (m Matrix) Cofactor() (Matrix, error) {
	if err := m.square("matrix cofactor"); err != nil {
		return Matrix{}, err
	}
	return m.cofactor(), nil
}

func (m Matrix) cofactor() Matrix {
	out := Matrix{rows: m.rows, cols: m.cols, data: make([]float64, len(m.data))}
	if m.rows == 1 {
		out.data[0] = 1
		return out
	}
	for r := range m.rows {
		for c := range m.cols {
			d := m.minor(r, c).det()
			if (r+c)%2 == 1 {
				d = -d
			}
			out.data[r*m.cols+c] = d
		}
	}
	return out
}

// Inverse returns transpose(cofactor(m)) / det(m). A singular matrix fails
// with ErrDegenerate.
func (m Matrix) Inverse() (Matrix, error) {
	if err := m.square("matrix inverse"); err != nil {
		return Matrix{}, err
	}
	d := m.det()
	if d == 0 {
		return Matrix{}, &DegenerateError{Op: "matrix inverse", Reason: "determinant is zero"}
	}
	return m.cofactor().Transpose().Scale(1 / d), nil
}

// Mat4 narrows a 4x4 Matrix to the fixed-size form.
func (m Matrix) Mat4() (Mat4, error) {
	if m.rows != 4 || m.cols != 4 {
		return Mat4{}, &DimensionError{Op: "matrix to mat4", Want: "4x4", Got: dims(m.rows, m.cols)}
	}
	var out Mat4
	for r := range 4 {
		for c := range 4 {
			out.set(r, c, m.at(r, c))
		}
	}
	return out, nil
}
