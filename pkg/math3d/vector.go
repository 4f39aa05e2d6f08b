package math3d

import (
	"fmt"
	"math"
)

// Vector is a vector of any dimension. Binary operations require both
// operands to have the same length.
type Vector []float64

// NewVector returns a vector holding a copy of comps.
func NewVector(comps ...float64) Vector {
	v := make(Vector, len(comps))
	copy(v, comps)
	return v
}

// ZeroVector returns the n-dimensional zero vector.
func ZeroVector(n int) Vector {
	return make(Vector, n)
}

// Dim returns the number of components.
func (v Vector) Dim() int {
	return len(v)
}

// At returns component i.
func (v Vector) At(i int) (float64, error) {
	if i < 0 || i >= len(v) {
		return 0, &IndexError{Op: "vector at", Index: i, Len: len(v)}
	}
	return v[i], nil
}

func (v Vector) sameDim(op string, w Vector) error {
	if len(v) != len(w) {
		return &DimensionError{Op: op, Want: fmt.Sprint(len(v)), Got: fmt.Sprint(len(w))}
	}
	return nil
}

// Add returns v + w.
func (v Vector) Add(w Vector) (Vector, error) {
	if err := v.sameDim("vector add", w); err != nil {
		return nil, err
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] + w[i]
	}
	return out, nil
}

// Sub returns v - w.
func (v Vector) Sub(w Vector) (Vector, error) {
	if err := v.sameDim("vector sub", w); err != nil {
		return nil, err
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] - w[i]
	}
	return out, nil
}

// Scale returns v * s.
func (v Vector) Scale(s float64) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] * s
	}
	return out
}

// Dot returns the inner product of v and w.
func (v Vector) Dot(w Vector) (float64, error) {
	if err := v.sameDim("vector dot", w); err != nil {
		return 0, err
	}
	var sum float64
	for i := range v {
		sum += v[i] * w[i]
	}
	return sum, nil
}

// Cross returns v × w. Both operands must be 3-dimensional.
func (v Vector) Cross(w Vector) (Vector, error) {
	if len(v) != 3 || len(w) != 3 {
		return nil, &DimensionError{Op: "vector cross", Want: "3 and 3", Got: fmt.Sprintf("%d and %d", len(v), len(w))}
	}
	return Vector{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}, nil
}

// Magnitude returns the Euclidean length.
func (v Vector) Magnitude() float64 {
	var sum float64
	for _, c := range v {
		sum += c * c
	}
	return math.Sqrt(sum)
}

// Normalize returns the unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v Vector) Normalize() Vector {
	m := v.Magnitude()
	if m == 0 {
		return NewVector(v...)
	}
	return v.Scale(1 / m)
}

// Homogenize appends a trailing 1.
func (v Vector) Homogenize() Vector {
	out := make(Vector, len(v)+1)
	copy(out, v)
	out[len(v)] = 1
	return out
}

// Dehomogenize drops the last component and divides the rest by it. If the
// last component is exactly zero the rest is returned unscaled.
func (v Vector) Dehomogenize() (Vector, error) {
	if len(v) < 2 {
		return nil, &DegenerateError{Op: "dehomogenize", Reason: fmt.Sprintf("vector of length %d", len(v))}
	}
	n := len(v) - 1
	w := v[n]
	if w == 0 {
		return NewVector(v[:n]...), nil
	}
	out := make(Vector, n)
	for i := range out {
		out[i] = v[i] / w
	}
	return out, nil
}

// Vec3 narrows v to a Vec3.
func (v Vector) Vec3() (Vec3, error) {
	if len(v) != 3 {
		return Vec3{}, &DimensionError{Op: "vector to vec3", Want: "3", Got: fmt.Sprint(len(v))}
	}
	return Vec3{v[0], v[1], v[2]}, nil
}
