package kernel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/qgrad/basis"
	"github.com/notargets/qgrad/utils"
)

func getTables(t *testing.T, D1D, Q1D int) *basis.Tables {
	tb, err := basis.NewTables1D(D1D-1, basis.IntegrationRule{Order: 2 * (Q1D - 1)})
	require.NoError(t, err)
	require.Equal(t, Q1D, tb.Q1D)
	return tb
}

func getKernel(t *testing.T, D1D, Q1D int) *Kernel {
	k, err := Lookup(Shape{D1D, Q1D}, false)
	require.NoError(t, err)
	return k
}

// fillLocal samples f at the nodes of NE elements laid side by side in x.
func fillLocal(tb *basis.Tables, NE int, f func(c int, x, y float64) float64) (in []float64) {
	D1D := tb.D1D
	in = make([]float64, utils.LocalSize(2, D1D, NE))
	for c := 0; c < 2; c++ {
		for e := 0; e < NE; e++ {
			for dy := 0; dy < D1D; dy++ {
				for dx := 0; dx < D1D; dx++ {
					in[utils.LocalIndex(c, dx, dy, e, D1D, NE)] = f(c, float64(e)+tb.Nodes[dx], tb.Nodes[dy])
				}
			}
		}
	}
	return
}

func randomLocal(r *rand.Rand, D1D, NE int) (in []float64) {
	in = make([]float64, utils.LocalSize(2, D1D, NE))
	for i := range in {
		in[i] = 2*r.Float64() - 1
	}
	return
}

func TestGradient_ReproducesBilinearFields(t *testing.T) {
	// u0 = 1 + 2x - 3y + 0.5xy, u1 = -x + 4y
	var (
		f = func(c int, x, y float64) float64 {
			if c == 0 {
				return 1 + 2*x - 3*y + 0.5*x*y
			}
			return -x + 4*y
		}
		grad = func(x, y float64) (g [2][2]float64) {
			g[0] = [2]float64{2 + 0.5*y, -3 + 0.5*x}
			g[1] = [2]float64{-1, 4}
			return
		}
		NE = 5
	)
	for _, sh := range []Shape{{2, 2}, {2, 3}, {3, 3}, {3, 4}, {3, 6}, {4, 5}, {5, 7}, {6, 2}} {
		var (
			tb  = getTables(t, sh.D1D, sh.Q1D)
			k   = getKernel(t, sh.D1D, sh.Q1D)
			in  = fillLocal(tb, NE, f)
			out = make([]float64, utils.GradSize(sh.NumQuad(), NE))
			NQ  = sh.NumQuad()
		)
		k.Apply(tb, NE, in, out)
		for e := 0; e < NE; e++ {
			for qy := 0; qy < sh.Q1D; qy++ {
				for qx := 0; qx < sh.Q1D; qx++ {
					var (
						q = utils.QuadIndex(qx, qy, sh.Q1D)
						g = grad(float64(e)+tb.Points[qx], tb.Points[qy])
					)
					for row := 0; row < 2; row++ {
						for col := 0; col < 2; col++ {
							assert.InDeltaf(t, g[row][col], out[utils.GradIndex(row, col, q, e, NQ)],
								1e-12*(1+math.Abs(g[row][col])), "%v e=%d q=%d (%d,%d)", sh, e, q, row, col)
						}
					}
				}
			}
		}
	}
}

func TestGradient_ConcreteQuadraticElement(t *testing.T) {
	var (
		tb  = getTables(t, 3, 4)
		k   = getKernel(t, 3, 4)
		in  = make([]float64, utils.LocalSize(2, 3, 1))
		out = make([]float64, utils.GradSize(16, 1))
	)
	assert.True(t, k.Specialized)
	// Nodal values (1+dx)(1+dy) on the grid 0, 0.5, 1: the field (1+2x)(1+2y)
	copy(in, []float64{1, 2, 3, 2, 4, 6, 3, 6, 9})
	k.Apply(tb, 1, in, out)
	for qy := 0; qy < 4; qy++ {
		for qx := 0; qx < 4; qx++ {
			var (
				q    = utils.QuadIndex(qx, qy, 4)
				x, y = tb.Points[qx], tb.Points[qy]
			)
			assert.InDelta(t, 2*(1+2*y), out[utils.GradIndex(0, 0, q, 0, 16)], 1e-12)
			assert.InDelta(t, 2*(1+2*x), out[utils.GradIndex(0, 1, q, 0, 16)], 1e-12)
			assert.InDelta(t, 0., out[utils.GradIndex(1, 0, q, 0, 16)], 1e-15)
			assert.InDelta(t, 0., out[utils.GradIndex(1, 1, q, 0, 16)], 1e-15)
		}
	}
}

func TestGradient_ZeroElements(t *testing.T) {
	tb := getTables(t, 3, 4)
	for _, sh := range []Shape{{3, 4}, {3, 5}} {
		k := getKernel(t, sh.D1D, sh.Q1D)
		assert.NotPanics(t, func() { k.Apply(tb, 0, nil, nil) })
		out := []float64{}
		k.Apply(tb, 0, []float64{}, out)
		assert.Equal(t, 0, len(out))
	}
	out := []float64{}
	Direct(tb, 0, nil, out)
	assert.Equal(t, 0, len(out))
}

func TestGradient_Linearity(t *testing.T) {
	var (
		r      = rand.New(rand.NewSource(11))
		NE     = 7
		alpha  = 1.75
		beta   = -0.3
		shapes = []Shape{{3, 4}, {4, 6}}
	)
	for _, sh := range shapes {
		var (
			tb   = getTables(t, sh.D1D, sh.Q1D)
			k    = getKernel(t, sh.D1D, sh.Q1D)
			A    = randomLocal(r, sh.D1D, NE)
			B    = randomLocal(r, sh.D1D, NE)
			AB   = make([]float64, len(A))
			n    = utils.GradSize(sh.NumQuad(), NE)
			gA   = make([]float64, n)
			gB   = make([]float64, n)
			gAB  = make([]float64, n)
			want = make([]float64, n)
		)
		for i := range A {
			AB[i] = alpha*A[i] + beta*B[i]
		}
		k.Apply(tb, NE, A, gA)
		k.Apply(tb, NE, B, gB)
		k.Apply(tb, NE, AB, gAB)
		floats.AddScaledTo(want, floats.ScaleTo(want, alpha, gA), beta, gB)
		assert.True(t, floats.EqualApprox(want, gAB, 1e-12), "%v", sh)
	}
}

func TestGradient_MatchesDirectContraction(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for D1D := 1; D1D <= 6; D1D++ {
		for Q1D := 1; Q1D <= 7; Q1D++ {
			var (
				NE   = 4
				tb   = getTables(t, D1D, Q1D)
				k    = getKernel(t, D1D, Q1D)
				in   = randomLocal(r, D1D, NE)
				n    = utils.GradSize(Q1D*Q1D, NE)
				sf   = make([]float64, n)
				ref  = make([]float64, n)
				diff float64
			)
			for i := range sf {
				sf[i] = math.NaN() // Every entry must be overwritten
			}
			k.Apply(tb, NE, in, sf)
			Direct(tb, NE, in, ref)
			for i := range sf {
				diff = math.Max(diff, math.Abs(sf[i]-ref[i])/(1+math.Abs(ref[i])))
			}
			assert.Truef(t, diff < 1e-12, "D1D=%d Q1D=%d max relative difference %g", D1D, Q1D, diff)
		}
	}
}

func TestGradient_SpecializedMatchesGeneric(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for _, sh := range Specializations() {
		var (
			NE   = 9
			tb   = getTables(t, sh.D1D, sh.Q1D)
			k    = getKernel(t, sh.D1D, sh.Q1D)
			in   = randomLocal(r, sh.D1D, NE)
			n    = utils.GradSize(sh.NumQuad(), NE)
			fast = make([]float64, n)
			gen  = make([]float64, n)
		)
		require.True(t, k.Specialized)
		k.Apply(tb, NE, in, fast)
		generic := &Kernel{Shape: sh, fn: gradVector2D}
		generic.Apply(tb, NE, in, gen)
		assert.True(t, floats.EqualApprox(fast, gen, 1e-14), "%v", sh)
	}
}

func TestGradient_ParallelDegreeIndependent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, sh := range []Shape{{3, 4}, {3, 5}} {
		var (
			NE  = 37
			tb  = getTables(t, sh.D1D, sh.Q1D)
			in  = randomLocal(r, sh.D1D, NE)
			n   = utils.GradSize(sh.NumQuad(), NE)
			ref = make([]float64, n)
		)
		k := getKernel(t, sh.D1D, sh.Q1D)
		k.ParallelDegree = 1
		k.Apply(tb, NE, in, ref)
		for _, np := range []int{2, 3, 8, 37, 64} {
			out := make([]float64, n)
			k.ParallelDegree = np
			k.Apply(tb, NE, in, out)
			assert.Equal(t, ref, out, "%v parallel degree %d", sh, np)
		}
	}
}

func TestGradient_DoesNotModifyInput(t *testing.T) {
	var (
		r   = rand.New(rand.NewSource(9))
		tb  = getTables(t, 3, 4)
		k   = getKernel(t, 3, 4)
		in  = randomLocal(r, 3, 6)
		cpy = append([]float64(nil), in...)
		out = make([]float64, utils.GradSize(16, 6))
	)
	k.Apply(tb, 6, in, out)
	assert.Equal(t, cpy, in)
}

func TestGradient_ContractViolations(t *testing.T) {
	var (
		tb = getTables(t, 3, 4)
		k  = getKernel(t, 3, 4)
	)
	assert.Panics(t, func() {
		k.Apply(tb, 2, make([]float64, utils.LocalSize(2, 3, 2)), make([]float64, utils.GradSize(16, 2)-1))
	})
	assert.Panics(t, func() {
		k.Apply(tb, 2, make([]float64, utils.LocalSize(2, 3, 1)), make([]float64, utils.GradSize(16, 2)))
	})
	other := getTables(t, 3, 5)
	assert.Panics(t, func() {
		k.Apply(other, 1, make([]float64, utils.LocalSize(2, 3, 1)), make([]float64, utils.GradSize(16, 1)))
	})
	assert.NoError(t, Validate(Shape{3, 4}, 2, 36, 128))
	assert.Error(t, Validate(Shape{3, 4}, 2, 36, 127))
	assert.Error(t, Validate(Shape{3, 4}, 2, 35, 128))
	assert.Error(t, Validate(Shape{3, 4}, -1, 0, 0))
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []Shape{{2, 3}, {3, 4}, {4, 5}}, Specializations())
	{
		k, err := Lookup(Shape{3, 4}, true)
		require.NoError(t, err)
		assert.True(t, k.Specialized)
	}
	{
		_, err := Lookup(Shape{3, 5}, true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedShape))
		k, err := Lookup(Shape{3, 5}, false)
		require.NoError(t, err)
		assert.False(t, k.Specialized)
	}
	for _, sh := range []Shape{{0, 4}, {3, 0}, {MaxD1D + 1, 4}, {3, MaxQ1D + 1}} {
		_, err := Lookup(sh, false)
		assert.True(t, errors.Is(err, ErrUnsupportedShape), "%v", sh)
	}
	assert.Equal(t, "(D1D=3, Q1D=4)", Shape{3, 4}.String())
}
