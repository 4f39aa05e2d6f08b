package math3d

// Vec4 represents a homogeneous 3D point or direction.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// Vec3 returns the Vec3 portion (ignoring W).
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Dehomogenize drops W and divides the rest by it.
// When W is exactly zero the first three components are returned unscaled.
func (v Vec4) Dehomogenize() Vec3 {
	if v.W == 0 {
		return Vec3{v.X, v.Y, v.Z}
	}
	return Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}
}

// Vector converts to the general form.
func (v Vec4) Vector() Vector {
	return Vector{v.X, v.Y, v.Z, v.W}
}
