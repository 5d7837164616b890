// Package mesh provides a structured quadrilateral mesh and a continuous
// nodal vector space on it. It plays the part of the finite element space
// collaborator consumed by the quadrature gradient pipeline.
package mesh

import (
	"github.com/pkg/errors"
)

// QuadMesh is an NX x NY grid of axis aligned quadrilaterals covering
// [0,Lx] x [0,Ly]. Element e = ex + NX*ey.
type QuadMesh struct {
	NX, NY int
	Lx, Ly float64
}

func NewQuadMesh(NX, NY int, Lx, Ly float64) (m *QuadMesh, err error) {
	if NX < 1 || NY < 1 {
		err = errors.Errorf("mesh: need at least one element per direction, have %d x %d", NX, NY)
		return
	}
	if !(Lx > 0) || !(Ly > 0) {
		err = errors.Errorf("mesh: domain extents must be positive, have %v x %v", Lx, Ly)
		return
	}
	m = &QuadMesh{NX: NX, NY: NY, Lx: Lx, Ly: Ly}
	return
}

func (m *QuadMesh) Dimension() int { return 2 }

func (m *QuadMesh) NumElements() int { return m.NX * m.NY }

// ElementSize returns the physical element extents; the reference to
// physical map of every element is x = x0 + hx*xi, y = y0 + hy*eta.
func (m *QuadMesh) ElementSize() (hx, hy float64) {
	return m.Lx / float64(m.NX), m.Ly / float64(m.NY)
}

// ElementIJ splits an element number into its grid position.
func (m *QuadMesh) ElementIJ(e int) (ex, ey int) {
	return e % m.NX, e / m.NX
}

// Origin returns the lower left corner of element e.
func (m *QuadMesh) Origin(e int) (x0, y0 float64) {
	var (
		ex, ey = m.ElementIJ(e)
		hx, hy = m.ElementSize()
	)
	return float64(ex) * hx, float64(ey) * hy
}

// ToPhysical maps reference coordinates on element e to physical ones.
func (m *QuadMesh) ToPhysical(e int, xi, eta float64) (x, y float64) {
	var (
		x0, y0 = m.Origin(e)
		hx, hy = m.ElementSize()
	)
	return x0 + hx*xi, y0 + hy*eta
}
