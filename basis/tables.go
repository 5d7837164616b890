// Package basis builds the 1D tables used by tensor-product kernels on the
// reference square [0,1]^2: nodal (Gauss-Lobatto) Lagrange basis values and
// derivatives sampled at Gauss-Legendre quadrature abscissas.
package basis

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/qgrad/utils"
)

type Geometry uint8

const (
	Segment Geometry = iota
	Square
	Triangle
)

func (g Geometry) String() string {
	switch g {
	case Segment:
		return "Segment"
	case Square:
		return "Square"
	case Triangle:
		return "Triangle"
	}
	return fmt.Sprintf("Geometry(%d)", uint8(g))
}

// IsTensorProduct reports whether elements of this geometry are products of
// 1D reference intervals.
func (g Geometry) IsTensorProduct() bool {
	return g == Segment || g == Square
}

// IntegrationRule is a tensor Gauss-Legendre rule integrating polynomials of
// degree Order exactly in each reference direction.
type IntegrationRule struct {
	Order int
}

func (ir IntegrationRule) NumPoints1D() int {
	return ir.Order/2 + 1
}

func (ir IntegrationRule) NumPoints() int {
	n := ir.NumPoints1D()
	return n * n
}

// Points1D returns abscissas and weights on [0,1].
func (ir IntegrationRule) Points1D() (X, W []float64) {
	X, W = JacobiGQ(0, 0, ir.NumPoints1D()-1)
	for i := range X {
		X[i] = 0.5 * (X[i] + 1)
		W[i] *= 0.5
	}
	return
}

// Tables holds B (values) and G (derivatives) of the D1D nodal basis
// functions at the Q1D quadrature points, column major:
// B[utils.BasisIndex(q, d, Q1D)] = phi_d(x_q).
type Tables struct {
	Q1D, D1D int
	B, G     []float64
	Nodes    []float64 // Nodal positions on [0,1], len D1D
	Points   []float64 // Quadrature abscissas on [0,1], len Q1D
	Weights  []float64
}

// NewTables wraps flat column-major tables, checking them against the
// declared sizes.
func NewTables(Q1D, D1D int, B, G []float64) (tb *Tables, err error) {
	if Q1D < 1 || D1D < 1 {
		err = errors.Errorf("basis: table sizes must be positive, have Q1D=%d, D1D=%d", Q1D, D1D)
		return
	}
	if len(B) != Q1D*D1D || len(G) != Q1D*D1D {
		err = errors.Errorf("basis: table length mismatch for Q1D x D1D = %d x %d: len(B)=%d, len(G)=%d",
			Q1D, D1D, len(B), len(G))
		return
	}
	tb = &Tables{Q1D: Q1D, D1D: D1D, B: B, G: G}
	return
}

// NewTablesFromMatrices accepts (Q1D x D1D) matrices.
func NewTablesFromMatrices(Bm, Gm mat.Matrix) (tb *Tables, err error) {
	var (
		Q1D, D1D = Bm.Dims()
		qg, dg   = Gm.Dims()
	)
	if qg != Q1D || dg != D1D {
		err = errors.Errorf("basis: value table is %d x %d but derivative table is %d x %d",
			Q1D, D1D, qg, dg)
		return
	}
	B := make([]float64, Q1D*D1D)
	G := make([]float64, Q1D*D1D)
	for d := 0; d < D1D; d++ {
		for q := 0; q < Q1D; q++ {
			B[utils.BasisIndex(q, d, Q1D)] = Bm.At(q, d)
			G[utils.BasisIndex(q, d, Q1D)] = Gm.At(q, d)
		}
	}
	return NewTables(Q1D, D1D, B, G)
}

// NewTables1D builds the tables for a degree-order nodal basis on
// Gauss-Lobatto points and the given rule.
func NewTables1D(order int, ir IntegrationRule) (tb *Tables, err error) {
	if order < 0 {
		err = errors.Errorf("basis: negative polynomial order %d", order)
		return
	}
	if ir.Order < 0 {
		err = errors.Errorf("basis: negative integration order %d", ir.Order)
		return
	}
	var (
		rn     = JacobiGL(0, 0, order)
		rq, wq = JacobiGQ(0, 0, ir.NumPoints1D()-1)
		V      = Vandermonde1D(order, rn)
		Vinv   mat.Dense
	)
	if err = Vinv.Inverse(V); err != nil {
		err = errors.Wrapf(err, "basis: singular nodal Vandermonde for order %d", order)
		return
	}
	var Bm, Gm mat.Dense
	Bm.Mul(Vandermonde1D(order, rq), &Vinv)
	Gm.Mul(GradVandermonde1D(order, rq), &Vinv)
	// d/dx = 2 d/dr on [0,1]
	Gm.Scale(2, &Gm)
	if tb, err = NewTablesFromMatrices(&Bm, &Gm); err != nil {
		return
	}
	tb.Nodes = make([]float64, len(rn))
	for i, r := range rn {
		tb.Nodes[i] = 0.5 * (r + 1)
	}
	tb.Points = make([]float64, len(rq))
	tb.Weights = make([]float64, len(wq))
	for i, r := range rq {
		tb.Points[i] = 0.5 * (r + 1)
		tb.Weights[i] = 0.5 * wq[i]
	}
	return
}

func (tb *Tables) Value(q, d int) float64 {
	return tb.B[utils.BasisIndex(q, d, tb.Q1D)]
}

func (tb *Tables) Deriv(q, d int) float64 {
	return tb.G[utils.BasisIndex(q, d, tb.Q1D)]
}

// Matrices returns copies of the tables as (Q1D x D1D) matrices.
func (tb *Tables) Matrices() (Bm, Gm *mat.Dense) {
	Bm = mat.NewDense(tb.Q1D, tb.D1D, nil)
	Gm = mat.NewDense(tb.Q1D, tb.D1D, nil)
	for d := 0; d < tb.D1D; d++ {
		for q := 0; q < tb.Q1D; q++ {
			Bm.Set(q, d, tb.Value(q, d))
			Gm.Set(q, d, tb.Deriv(q, d))
		}
	}
	return
}
