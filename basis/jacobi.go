package basis

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// JacobiGQ returns the N+1 point Gauss-Jacobi quadrature on [-1,1] with
// weight (1-r)^alpha (1+r)^beta, nodes ascending.
func JacobiGQ(alpha, beta float64, N int) (X, W []float64) {
	if N == 0 {
		X = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		W = []float64{2.}
		return
	}
	var (
		h1 = make([]float64, N+1)
		JJ = mat.NewSymDense(N+1, nil)
	)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}
	// Golub-Welsch: symmetric tridiagonal Jacobi matrix
	fac := -.5 * (alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		JJ.SetSym(i, i, fac/(h1[i]*(h1[i]+2.)))
	}
	if alpha+beta < 10*1.e-16 {
		JJ.SetSym(0, 0, 0.)
	}
	for i := 0; i < N; i++ {
		ip1 := float64(i + 1)
		val := 2. / (h1[i] + 2.)
		val *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) /
			((h1[i] + 1.) * (h1[i] + 3.)))
		JJ.SetSym(i, i+1, val)
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	X = eig.Values(nil)
	VV := mat.NewDense(N+1, N+1, nil)
	eig.VectorsTo(VV)
	W = make([]float64, N+1)
	g0 := gamma0(alpha, beta)
	for i := range W {
		v := VV.At(0, i)
		W[i] = v * v * g0
	}
	return
}

// JacobiGL returns the N+1 Gauss-Lobatto-Jacobi nodes on [-1,1].
func JacobiGL(alpha, beta float64, N int) (X []float64) {
	X = make([]float64, N+1)
	if N == 0 {
		return
	}
	X[0], X[N] = -1, 1
	if N == 1 {
		return
	}
	xint, _ := JacobiGQ(alpha+1, beta+1, N-2)
	copy(X[1:N], xint)
	return
}

// JacobiP evaluates the orthonormal Jacobi polynomial of degree N at r.
func JacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	var (
		Nc   = len(r)
		ab   = alpha + beta
		pm1  = make([]float64, Nc)
		pcur = make([]float64, Nc)
	)
	rg := 1. / math.Sqrt(gamma0(alpha, beta))
	for i := range pm1 {
		pm1[i] = rg
	}
	if N == 0 {
		return pm1
	}
	rg1 := 1. / math.Sqrt(gamma1(alpha, beta))
	for i, x := range r {
		pcur[i] = rg1 * ((ab+2.)*x/2. + (alpha-beta)/2.)
	}
	var (
		a1, b1, ab1 = alpha + 1., beta + 1., ab + 1.
		aold        = 2. * math.Sqrt(a1*b1/(ab+3.)) / (ab + 2.)
	)
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		ip2 := ip1 + 1
		h1 := 2.*ip1 + ab
		anew := 2. / (h1 + 2.) * math.Sqrt(ip2*(ip1+ab1)*(ip1+a1)*(ip1+b1)/(h1+1.)/(h1+3.))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2.)
		next := make([]float64, Nc)
		for j, x := range r {
			next[j] = (-aold*pm1[j] + (x-bnew)*pcur[j]) / anew
		}
		pm1, pcur = pcur, next
		aold = anew
	}
	return pcur
}

// GradJacobiP evaluates the derivative of JacobiP at r.
func GradJacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	if N == 0 {
		return make([]float64, len(r))
	}
	p = JacobiP(r, alpha+1, beta+1, N-1)
	fN := float64(N)
	fac := math.Sqrt(fN * (fN + alpha + beta + 1))
	for i := range p {
		p[i] *= fac
	}
	return
}

// Vandermonde1D is len(r) x (N+1), column j holds the degree j Legendre mode.
func Vandermonde1D(N int, r []float64) (V *mat.Dense) {
	V = mat.NewDense(len(r), N+1, nil)
	for j := 0; j < N+1; j++ {
		V.SetCol(j, JacobiP(r, 0, 0, j))
	}
	return
}

func GradVandermonde1D(N int, r []float64) (Vr *mat.Dense) {
	Vr = mat.NewDense(len(r), N+1, nil)
	for j := 0; j < N+1; j++ {
		Vr.SetCol(j, GradJacobiP(r, 0, 0, j))
	}
	return
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func gamma1(alpha, beta float64) float64 {
	ab := alpha + beta
	a1 := alpha + 1.
	b1 := beta + 1.
	return a1 * b1 * gamma0(alpha, beta) / (ab + 3.0)
}
