package common

import (
	"github.com/chewxy/math32"
)

// Vec3 is a 3-component float32 vector.
type Vec3 struct {
	X, Y, Z float32
}

// Length returns the euclidean length of the vector.
//
// Returns:
//   - float32: the vector length
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Scale returns the vector multiplied by the scalar s.
//
// Parameters:
//   - s: the scalar factor
//
// Returns:
//   - Vec3: the scaled vector
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Add returns a + b.
func Add(a, b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Mat4 is a 4x4 float32 matrix stored flat in column-major order
// (OpenGL/WebGPU convention): element (row, col) lives at index col*4+row.
// For affine transforms the translation occupies indices 12..14 and the
// upper-left 3x3 linear block occupies columns 0..2.
type Mat4 [16]float32

// Identity returns the 4x4 identity matrix.
//
// Returns:
//   - Mat4: the identity matrix
func Identity() Mat4 {
	var m Mat4
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// Translation returns an identity matrix carrying the given translation.
//
// Parameters:
//   - x, y, z: the translation components
//
// Returns:
//   - Mat4: the translation matrix
func Translation(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// At returns the element at (row, col).
//
// Parameters:
//   - row: the row index in [0,4)
//   - col: the column index in [0,4)
//
// Returns:
//   - float32: the element value
func (m *Mat4) At(row, col int) float32 {
	return m[col*4+row]
}

// Set assigns the element at (row, col).
//
// Parameters:
//   - row: the row index in [0,4)
//   - col: the column index in [0,4)
//   - v: the value to store
func (m *Mat4) Set(row, col int, v float32) {
	m[col*4+row] = v
}

// TransformPoint applies the full affine transform to a point: the linear 3x3
// block plus the translation column. The w row is ignored (assumed affine).
//
// Parameters:
//   - v: the point to transform
//
// Returns:
//   - Vec3: the transformed point
func (m *Mat4) TransformPoint(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12],
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13],
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14],
	}
}

// TransformVector applies only the linear 3x3 block to a direction vector,
// excluding translation. Used for normals and tangent directions.
//
// Parameters:
//   - v: the direction to transform
//
// Returns:
//   - Vec3: the transformed direction
func (m *Mat4) TransformVector(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// Mul returns a * b.
//
// Parameters:
//   - a: the left-hand matrix
//   - b: the right-hand matrix
//
// Returns:
//   - Mat4: the product matrix
func Mul(a, b Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			out[i*4+j] = sum
		}
	}
	return out
}

// FromTRS composes an affine matrix from a translation, a unit quaternion
// rotation (x, y, z, w) and a per-axis scale, in T * R * S order.
//
// Parameters:
//   - translation: the translation components
//   - rotation: the unit quaternion (x, y, z, w)
//   - scale: the per-axis scale factors
//
// Returns:
//   - Mat4: the composed matrix
func FromTRS(translation [3]float32, rotation [4]float32, scale [3]float32) Mat4 {
	x, y, z, w := rotation[0], rotation[1], rotation[2], rotation[3]

	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	var m Mat4
	m[0] = (1 - 2*(yy+zz)) * scale[0]
	m[1] = 2 * (xy + wz) * scale[0]
	m[2] = 2 * (xz - wy) * scale[0]

	m[4] = 2 * (xy - wz) * scale[1]
	m[5] = (1 - 2*(xx+zz)) * scale[1]
	m[6] = 2 * (yz + wx) * scale[1]

	m[8] = 2 * (xz + wy) * scale[2]
	m[9] = 2 * (yz - wx) * scale[2]
	m[10] = (1 - 2*(xx+yy)) * scale[2]

	m[12], m[13], m[14] = translation[0], translation[1], translation[2]
	m[15] = 1
	return m
}

// Inverse computes the inverse of the matrix using the Laplace expansion
// (cofactor) method. If the matrix is singular (determinant == 0) the identity
// matrix is returned along with false.
//
// Returns:
//   - Mat4: the inverted matrix, or identity if singular
//   - bool: true if the matrix was successfully inverted
func (m *Mat4) Inverse() (Mat4, bool) {
	// 2x2 sub-determinants of the upper-left and lower-right quadrants.
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return Identity(), false
	}

	invDet := 1.0 / det

	var out Mat4
	out[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	out[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	out[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	out[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	out[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	out[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	out[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	out[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	out[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	out[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	out[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	out[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	out[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	out[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	out[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	out[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	return out, true
}
