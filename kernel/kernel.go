package kernel

import (
	"fmt"

	"github.com/notargets/qgrad/basis"
	"github.com/notargets/qgrad/utils"
)

// Apply writes the gradient of the NE element local field in to out.
// Every entry of out is overwritten. With NE == 0 nothing is read or written.
// Mismatched tables or slice lengths are programming errors and panic; call
// Validate first when the sizes come from outside.
func (k *Kernel) Apply(tb *basis.Tables, NE int, in, out []float64) {
	if NE == 0 {
		return
	}
	if tb.D1D != k.D1D || tb.Q1D != k.Q1D {
		panic(fmt.Sprintf("kernel %v called with tables of size (D1D=%d, Q1D=%d)",
			k.Shape, tb.D1D, tb.Q1D))
	}
	if err := Validate(k.Shape, NE, len(in), len(out)); err != nil {
		panic(err)
	}
	pm := utils.NewPartitionMap(utils.ParallelDegreeFor(k.ParallelDegree, NE), NE)
	pm.ForEachBucket(func(bn, kMin, kMax int) {
		k.fn(k.Shape, NE, kMin, kMax, tb.B, tb.G, in, out)
	})
}

// gradVector2D is the runtime sized kernel. Scratch is allocated once per
// call and reused across the elements of the range.
func gradVector2D(sh Shape, NE, kMin, kMax int, B, G, in, out []float64) {
	var (
		D1D, Q1D = sh.D1D, sh.Q1D
		NQ       = Q1D * Q1D
		sGrad    = make([]float64, 4*NQ)
		vDx      = make([]float64, 2*Q1D)
		vx       = make([]float64, 2*Q1D)
	)
	for e := kMin; e < kMax; e++ {
		for i := range sGrad {
			sGrad[i] = 0
		}
		for dy := 0; dy < D1D; dy++ {
			for i := range vx {
				vDx[i], vx[i] = 0, 0
			}
			for dx := 0; dx < D1D; dx++ {
				in0 := in[utils.LocalIndex(0, dx, dy, e, D1D, NE)]
				in1 := in[utils.LocalIndex(1, dx, dy, e, D1D, NE)]
				for qx := 0; qx < Q1D; qx++ {
					wDx := G[utils.BasisIndex(qx, dx, Q1D)]
					wx := B[utils.BasisIndex(qx, dx, Q1D)]
					vDx[2*qx] += in0 * wDx
					vDx[2*qx+1] += in1 * wDx
					vx[2*qx] += in0 * wx
					vx[2*qx+1] += in1 * wx
				}
			}
			for qy := 0; qy < Q1D; qy++ {
				vy := B[utils.BasisIndex(qy, dy, Q1D)]
				vDy := G[utils.BasisIndex(qy, dy, Q1D)]
				for qx := 0; qx < Q1D; qx++ {
					q := utils.QuadIndex(qx, qy, Q1D)
					for c := 0; c < 2; c++ {
						sGrad[utils.GradIndex(c, 0, q, 0, NQ)] += vy * vDx[2*qx+c]
						sGrad[utils.GradIndex(c, 1, q, 0, NQ)] += vDy * vx[2*qx+c]
					}
				}
			}
		}
		// The per element accumulator has the output's (row, col, q) layout
		copy(out[utils.GradIndex(0, 0, 0, e, NQ):utils.GradIndex(0, 0, 0, e+1, NQ)], sGrad)
	}
}

// Direct evaluates the same gradient by the full 2D contraction, costing
// O(D1D^2*Q1D^2) per element. It runs sequentially and serves as a
// reference for the sum factorized kernels.
func Direct(tb *basis.Tables, NE int, in, out []float64) {
	var (
		D1D, Q1D = tb.D1D, tb.Q1D
		NQ       = Q1D * Q1D
	)
	if err := Validate(Shape{D1D, Q1D}, NE, len(in), len(out)); err != nil {
		panic(err)
	}
	for e := 0; e < NE; e++ {
		for qy := 0; qy < Q1D; qy++ {
			for qx := 0; qx < Q1D; qx++ {
				q := utils.QuadIndex(qx, qy, Q1D)
				for c := 0; c < 2; c++ {
					var dudx, dudy float64
					for dy := 0; dy < D1D; dy++ {
						for dx := 0; dx < D1D; dx++ {
							u := in[utils.LocalIndex(c, dx, dy, e, D1D, NE)]
							dudx += u * tb.Deriv(qx, dx) * tb.Value(qy, dy)
							dudy += u * tb.Value(qx, dx) * tb.Deriv(qy, dy)
						}
					}
					out[utils.GradIndex(c, 0, q, e, NQ)] = dudx
					out[utils.GradIndex(c, 1, q, e, NQ)] = dudy
				}
			}
		}
	}
}
