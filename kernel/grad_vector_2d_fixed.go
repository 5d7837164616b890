package kernel

// Fixed size kernels. Loop bounds and scratch sizes are constants so the
// scratch lives on the stack and the compiler can unroll the inner loops.

func init() {
	register(Shape{2, 3}, gradVector2D_2_3)
	register(Shape{3, 4}, gradVector2D_3_4)
	register(Shape{4, 5}, gradVector2D_4_5)
}

func gradVector2D_2_3(_ Shape, NE, kMin, kMax int, B, G, in, out []float64) {
	const (
		D1D = 2
		Q1D = 3
		NQ  = Q1D * Q1D
	)
	if kMax <= kMin {
		return
	}
	var (
		b, g    [Q1D * D1D]float64
		sGrad   [4 * NQ]float64
		vDx, vx [2 * Q1D]float64
	)
	copy(b[:], B)
	copy(g[:], G)
	for e := kMin; e < kMax; e++ {
		sGrad = [4 * NQ]float64{}
		for dy := 0; dy < D1D; dy++ {
			vDx = [2 * Q1D]float64{}
			vx = [2 * Q1D]float64{}
			for dx := 0; dx < D1D; dx++ {
				in0 := in[dx+D1D*(dy+D1D*e)]
				in1 := in[dx+D1D*(dy+D1D*(e+NE))]
				for qx := 0; qx < Q1D; qx++ {
					wDx := g[qx+Q1D*dx]
					wx := b[qx+Q1D*dx]
					vDx[2*qx] += in0 * wDx
					vDx[2*qx+1] += in1 * wDx
					vx[2*qx] += in0 * wx
					vx[2*qx+1] += in1 * wx
				}
			}
			for qy := 0; qy < Q1D; qy++ {
				vy := b[qy+Q1D*dy]
				vDy := g[qy+Q1D*dy]
				for qx := 0; qx < Q1D; qx++ {
					q := qx + Q1D*qy
					sGrad[4*q] += vy * vDx[2*qx]
					sGrad[4*q+1] += vy * vDx[2*qx+1]
					sGrad[4*q+2] += vDy * vx[2*qx]
					sGrad[4*q+3] += vDy * vx[2*qx+1]
				}
			}
		}
		copy(out[4*NQ*e:4*NQ*(e+1)], sGrad[:])
	}
}

func gradVector2D_3_4(_ Shape, NE, kMin, kMax int, B, G, in, out []float64) {
	const (
		D1D = 3
		Q1D = 4
		NQ  = Q1D * Q1D
	)
	if kMax <= kMin {
		return
	}
	var (
		b, g    [Q1D * D1D]float64
		sGrad   [4 * NQ]float64
		vDx, vx [2 * Q1D]float64
	)
	copy(b[:], B)
	copy(g[:], G)
	for e := kMin; e < kMax; e++ {
		sGrad = [4 * NQ]float64{}
		for dy := 0; dy < D1D; dy++ {
			vDx = [2 * Q1D]float64{}
			vx = [2 * Q1D]float64{}
			for dx := 0; dx < D1D; dx++ {
				in0 := in[dx+D1D*(dy+D1D*e)]
				in1 := in[dx+D1D*(dy+D1D*(e+NE))]
				for qx := 0; qx < Q1D; qx++ {
					wDx := g[qx+Q1D*dx]
					wx := b[qx+Q1D*dx]
					vDx[2*qx] += in0 * wDx
					vDx[2*qx+1] += in1 * wDx
					vx[2*qx] += in0 * wx
					vx[2*qx+1] += in1 * wx
				}
			}
			for qy := 0; qy < Q1D; qy++ {
				vy := b[qy+Q1D*dy]
				vDy := g[qy+Q1D*dy]
				for qx := 0; qx < Q1D; qx++ {
					q := qx + Q1D*qy
					sGrad[4*q] += vy * vDx[2*qx]
					sGrad[4*q+1] += vy * vDx[2*qx+1]
					sGrad[4*q+2] += vDy * vx[2*qx]
					sGrad[4*q+3] += vDy * vx[2*qx+1]
				}
			}
		}
		copy(out[4*NQ*e:4*NQ*(e+1)], sGrad[:])
	}
}

func gradVector2D_4_5(_ Shape, NE, kMin, kMax int, B, G, in, out []float64) {
	const (
		D1D = 4
		Q1D = 5
		NQ  = Q1D * Q1D
	)
	if kMax <= kMin {
		return
	}
	var (
		b, g    [Q1D * D1D]float64
		sGrad   [4 * NQ]float64
		vDx, vx [2 * Q1D]float64
	)
	copy(b[:], B)
	copy(g[:], G)
	for e := kMin; e < kMax; e++ {
		sGrad = [4 * NQ]float64{}
		for dy := 0; dy < D1D; dy++ {
			vDx = [2 * Q1D]float64{}
			vx = [2 * Q1D]float64{}
			for dx := 0; dx < D1D; dx++ {
				in0 := in[dx+D1D*(dy+D1D*e)]
				in1 := in[dx+D1D*(dy+D1D*(e+NE))]
				for qx := 0; qx < Q1D; qx++ {
					wDx := g[qx+Q1D*dx]
					wx := b[qx+Q1D*dx]
					vDx[2*qx] += in0 * wDx
					vDx[2*qx+1] += in1 * wDx
					vx[2*qx] += in0 * wx
					vx[2*qx+1] += in1 * wx
				}
			}
			for qy := 0; qy < Q1D; qy++ {
				vy := b[qy+Q1D*dy]
				vDy := g[qy+Q1D*dy]
				for qx := 0; qx < Q1D; qx++ {
					q := qx + Q1D*qy
					sGrad[4*q] += vy * vDx[2*qx]
					sGrad[4*q+1] += vy * vDx[2*qx+1]
					sGrad[4*q+2] += vDy * vx[2*qx]
					sGrad[4*q+3] += vDy * vx[2*qx+1]
				}
			}
		}
		copy(out[4*NQ*e:4*NQ*(e+1)], sGrad[:])
	}
}
