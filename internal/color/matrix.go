package color

// Mat3 is a row-major 3x3 matrix.
type Mat3 [9]float64

// Identity3 is the 3x3 identity matrix.
var Identity3 = Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Diagonal returns the matrix with d on its diagonal.
func Diagonal(d0, d1, d2 float64) Mat3 {
	return Mat3{d0, 0, 0, 0, d1, 0, 0, 0, d2}
}

// Mul returns m*o.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i*3+j] = m[i*3]*o[j] + m[i*3+1]*o[3+j] + m[i*3+2]*o[6+j]
		}
	}
	return r
}

// Apply returns m*(x, y, z).
func (m Mat3) Apply(x, y, z float64) (float64, float64, float64) {
	return m[0]*x + m[1]*y + m[2]*z,
		m[3]*x + m[4]*y + m[5]*z,
		m[6]*x + m[7]*y + m[8]*z
}

// Det returns the determinant.
func (m Mat3) Det() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Inverse returns the inverse of m. A singular matrix yields the identity
// and false.
func (m Mat3) Inverse() (Mat3, bool) {
	det := m.Det()
	if det == 0 {
		return Identity3, false
	}
	inv := 1 / det
	return Mat3{
		(m[4]*m[8] - m[5]*m[7]) * inv,
		(m[2]*m[7] - m[1]*m[8]) * inv,
		(m[1]*m[5] - m[2]*m[4]) * inv,
		(m[5]*m[6] - m[3]*m[8]) * inv,
		(m[0]*m[8] - m[2]*m[6]) * inv,
		(m[2]*m[3] - m[0]*m[5]) * inv,
		(m[3]*m[7] - m[4]*m[6]) * inv,
		(m[1]*m[6] - m[0]*m[7]) * inv,
		(m[0]*m[4] - m[1]*m[3]) * inv,
	}, true
}

// LinearToXYZMatrix maps linear sRGB (D65) to CIE XYZ.
var LinearToXYZMatrix = Mat3{
	0.4124564, 0.3575761, 0.1804375,
	0.2126729, 0.7151522, 0.0721750,
	0.0193339, 0.1191920, 0.9503041,
}

// XYZToLinearMatrix maps CIE XYZ to linear sRGB (D65).
var XYZToLinearMatrix = Mat3{
	3.2404542, -1.5371385, -0.4985314,
	-0.9692660, 1.8760108, 0.0415560,
	0.0556434, -0.2040259, 1.0572252,
}

// BradfordMatrix maps CIE XYZ to the Bradford cone response (LMS) space.
var BradfordMatrix = Mat3{
	0.8951, 0.2664, -0.1614,
	-0.7502, 1.7135, 0.0367,
	0.0389, -0.0685, 1.0296,
}

// BradfordInverse is the exact inverse of BradfordMatrix, so an adaptation
// between identical white points is the identity.
var BradfordInverse, _ = BradfordMatrix.Inverse()

// LinearToXYZ converts linear sRGB to XYZ.
func LinearToXYZ(r, g, b float64) (x, y, z float64) { return LinearToXYZMatrix.Apply(r, g, b) }

// XYZToLinear converts XYZ to linear sRGB.
func XYZToLinear(x, y, z float64) (r, g, b float64) { return XYZToLinearMatrix.Apply(x, y, z) }

// XYZToLMS converts XYZ to Bradford LMS.
func XYZToLMS(x, y, z float64) (l, m, s float64) { return BradfordMatrix.Apply(x, y, z) }

// LMSToXYZ converts Bradford LMS to XYZ.
func LMSToXYZ(l, m, s float64) (x, y, z float64) { return BradfordInverse.Apply(l, m, s) }
