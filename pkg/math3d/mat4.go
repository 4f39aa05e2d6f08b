package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4FromRows builds a matrix from its rows as they would be written on
// paper.
func Mat4FromRows(r0, r1, r2, r3 [4]float64) Mat4 {
	var m Mat4
	for col := range 4 {
		m[col*4] = r0[col]
		m[1+col*4] = r1[col]
		m[2+col*4] = r2[col]
		m[3+col*4] = r3[col]
	}
	return m
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// MulPoint homogenizes p, transforms it and dehomogenizes the result.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	return m.MulVec4(p.Homogenize()).Dehomogenize()
}

// MulDir transforms a direction (w=0, no translation).
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// Matrix converts to the general row-major form.
func (m Mat4) Matrix() Matrix {
	out := Matrix{rows: 4, cols: 4, data: make([]float64, 16)}
	for row := range 4 {
		for col := range 4 {
			out.data[row*4+col] = m[row+col*4]
		}
	}
	return out
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float64 {
	return m.Matrix().det()
}

// Inverse returns the inverse of the matrix computed from its cofactors.
// A singular matrix fails with ErrDegenerate.
func (m Mat4) Inverse() (Mat4, error) {
	inv, err := m.Matrix().Inverse()
	if err != nil {
		return Mat4{}, err
	}
	return inv.Mat4()
}

func checkMat4Index(op string, row, col int) error {
	if row < 0 || row >= 4 {
		return &IndexError{Op: op + " row", Index: row, Len: 4}
	}
	if col < 0 || col >= 4 {
		return &IndexError{Op: op + " col", Index: col, Len: 4}
	}
	return nil
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) (float64, error) {
	if err := checkMat4Index("mat4 get", row, col); err != nil {
		return 0, err
	}
	return m.get(row, col), nil
}

// Set sets the element at (row, col).
func (m *Mat4) Set(row, col int, val float64) error {
	if err := checkMat4Index("mat4 set", row, col); err != nil {
		return err
	}
	m.set(row, col, val)
	return nil
}

func (m Mat4) get(row, col int) float64 {
	return m[row+col*4]
}

func (m *Mat4) set(row, col int, val float64) {
	m[row+col*4] = val
}
