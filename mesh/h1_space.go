package mesh

import (
	"github.com/james-bowman/sparse"
	"github.com/pkg/errors"

	"github.com/notargets/qgrad/basis"
	"github.com/notargets/qgrad/utils"
)

// H1Space is a continuous, vdim component, degree Order nodal space on a
// QuadMesh with Gauss-Lobatto nodes. Global vectors are ordered by nodes:
// component c of node n lives at n + NumNodes()*c.
type H1Space struct {
	Mesh       *QuadMesh
	Order      int
	VDimension int
	Nodes1D    []float64 // Reference nodes on [0,1]
	NNX, NNY   int       // Global node counts per direction
	R          *sparse.CSR
	gather     []int // gather[localIndex] = globalIndex
}

func NewH1Space(m *QuadMesh, order, vdim int) (fes *H1Space, err error) {
	if m == nil {
		err = errors.New("mesh: nil mesh")
		return
	}
	if order < 1 {
		err = errors.Errorf("mesh: continuous space needs order >= 1, have %d", order)
		return
	}
	if vdim < 1 {
		err = errors.Errorf("mesh: vector dimension must be positive, have %d", vdim)
		return
	}
	fes = &H1Space{
		Mesh:       m,
		Order:      order,
		VDimension: vdim,
		NNX:        m.NX*order + 1,
		NNY:        m.NY*order + 1,
	}
	fes.Nodes1D = basis.JacobiGL(0, 0, order)
	for i, r := range fes.Nodes1D {
		fes.Nodes1D[i] = 0.5 * (r + 1)
	}
	fes.buildRestriction()
	return
}

// buildRestriction assembles the Boolean element restriction operator
// R: global -> local and derives the gather map from its non zeros.
func (fes *H1Space) buildRestriction() {
	var (
		D1D    = fes.Order + 1
		NE     = fes.Mesh.NumElements()
		Nnodes = fes.NumNodes()
		nLocal = utils.LocalSize(fes.VDimension, D1D, NE)
		dok    = sparse.NewDOK(nLocal, fes.VSize())
	)
	for c := 0; c < fes.VDimension; c++ {
		for e := 0; e < NE; e++ {
			ex, ey := fes.Mesh.ElementIJ(e)
			for dy := 0; dy < D1D; dy++ {
				for dx := 0; dx < D1D; dx++ {
					node := fes.NodeIndex(ex*fes.Order+dx, ey*fes.Order+dy)
					dok.Set(utils.LocalIndex(c, dx, dy, e, D1D, NE), node+Nnodes*c, 1)
				}
			}
		}
	}
	fes.R = dok.ToCSR()
	fes.gather = make([]int, nLocal)
	fes.R.DoNonZero(func(i, j int, v float64) {
		fes.gather[i] = j
	})
}

// NodeIndex numbers the global node at grid position (ix, iy).
func (fes *H1Space) NodeIndex(ix, iy int) int {
	return ix + fes.NNX*iy
}

func (fes *H1Space) NumNodes() int { return fes.NNX * fes.NNY }

func (fes *H1Space) Dimension() int { return fes.Mesh.Dimension() }

func (fes *H1Space) VDim() int { return fes.VDimension }

func (fes *H1Space) NumElements() int { return fes.Mesh.NumElements() }

func (fes *H1Space) GetOrder() int { return fes.Order }

func (fes *H1Space) Geometry() basis.Geometry { return basis.Square }

func (fes *H1Space) DofsPerElement() int { return (fes.Order + 1) * (fes.Order + 1) }

func (fes *H1Space) VSize() int { return fes.VDimension * fes.NumNodes() }

// GlobalToLocal gathers a global vector into the component major local
// layout addressed by utils.LocalIndex.
func (fes *H1Space) GlobalToLocal(global, local []float64) (err error) {
	if len(global) != fes.VSize() {
		err = errors.Errorf("mesh: global vector has length %d, space size is %d", len(global), fes.VSize())
		return
	}
	if len(local) != len(fes.gather) {
		err = errors.Errorf("mesh: local vector has length %d, need %d", len(local), len(fes.gather))
		return
	}
	for i, j := range fes.gather {
		local[i] = global[j]
	}
	return
}

// LocalToGlobal sums a local vector into global, the transpose of
// GlobalToLocal. global is overwritten.
func (fes *H1Space) LocalToGlobal(local, global []float64) (err error) {
	if len(global) != fes.VSize() || len(local) != len(fes.gather) {
		err = errors.Errorf("mesh: size mismatch, len(local)=%d want %d, len(global)=%d want %d",
			len(local), len(fes.gather), len(global), fes.VSize())
		return
	}
	for j := range global {
		global[j] = 0
	}
	for i, j := range fes.gather {
		global[j] += local[i]
	}
	return
}

// NodeCoordinates returns the physical position of global node n.
func (fes *H1Space) NodeCoordinates(n int) (x, y float64) {
	var (
		ix, iy = n % fes.NNX, n / fes.NNX
		hx, hy = fes.Mesh.ElementSize()
		p      = fes.Order
	)
	// The last node row belongs to the last element
	ex, dx := ix/p, ix%p
	if ex == fes.Mesh.NX {
		ex, dx = ex-1, p
	}
	ey, dy := iy/p, iy%p
	if ey == fes.Mesh.NY {
		ey, dy = ey-1, p
	}
	x = (float64(ex) + fes.Nodes1D[dx]) * hx
	y = (float64(ey) + fes.Nodes1D[dy]) * hy
	return
}

// Project interpolates a 2 component physical field onto the nodes.
func (fes *H1Space) Project(f func(x, y float64) [2]float64) (global []float64, err error) {
	if fes.VDimension != 2 {
		err = errors.Errorf("mesh: Project needs a 2 component space, have %d", fes.VDimension)
		return
	}
	var (
		Nnodes = fes.NumNodes()
	)
	global = make([]float64, fes.VSize())
	for n := 0; n < Nnodes; n++ {
		v := f(fes.NodeCoordinates(n))
		global[n] = v[0]
		global[n+Nnodes] = v[1]
	}
	return
}
