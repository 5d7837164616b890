package utils

// Flattened layouts used by the quadrature gradient pipeline. All of them
// put the first index fastest.

// BasisIndex addresses a 1D basis table of shape (Q1D x D1D), column major:
// q in [0,Q1D), d in [0,D1D).
func BasisIndex(q, d, Q1D int) int {
	return q + Q1D*d
}

// LocalIndex addresses the gathered local field, component major:
// c in [0,vdim), dx,dy in [0,D1D), e in [0,NE).
func LocalIndex(c, dx, dy, e, D1D, NE int) int {
	return dx + D1D*(dy+D1D*(e+NE*c))
}

// LocalSize is the length of a gathered local field.
func LocalSize(vdim, D1D, NE int) int {
	return vdim * D1D * D1D * NE
}

// GradIndex addresses the 2x2 quadrature point gradient:
// row (component) and col (derivative direction) in {0,1}, q in [0,NQ),
// e in [0,NE).
func GradIndex(row, col, q, e, NQ int) int {
	return row + 2*(col+2*(q+NQ*e))
}

// GradSize is the length of a gradient field.
func GradSize(NQ, NE int) int {
	return 4 * NQ * NE
}

// QuadIndex flattens the tensor quadrature point (qx, qy).
func QuadIndex(qx, qy, Q1D int) int {
	return qx + Q1D*qy
}
