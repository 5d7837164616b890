// Package qupdate drives the quadrature point gradient kernel: it checks a
// finite element space against what the kernels support, gathers the field
// to element local storage and evaluates the gradient into buffers owned by
// a Workspace.
package qupdate

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/notargets/qgrad/basis"
	"github.com/notargets/qgrad/kernel"
	"github.com/notargets/qgrad/memory"
	"github.com/notargets/qgrad/utils"
)

// FiniteElementSpace is the view of a vector finite element space needed to
// evaluate gradients at quadrature points.
type FiniteElementSpace interface {
	Dimension() int
	VDim() int
	NumElements() int
	GetOrder() int
	Geometry() basis.Geometry
	DofsPerElement() int // Scalar dofs per element
	VSize() int          // Length of a global vector
	// GlobalToLocal fills local, laid out per utils.LocalIndex.
	GlobalToLocal(global, local []float64) error
}

type TableProvider interface {
	GetBasisTables(geom basis.Geometry, order int, ir basis.IntegrationRule) (*basis.Tables, error)
}

// GradientField holds d(u_row)/d(x_col) at every quadrature point of every
// element in reference coordinates, laid out per utils.GradIndex.
type GradientField struct {
	Data        []float64
	NumElements int
	Q1D         int
	NumQuad     int
}

func (gf GradientField) At(row, col, q, e int) float64 {
	return gf.Data[utils.GradIndex(row, col, q, e, gf.NumQuad)]
}

// Clone returns a copy that does not share storage with a Workspace.
func (gf GradientField) Clone() (R GradientField) {
	R = gf
	R.Data = append([]float64(nil), gf.Data...)
	return
}

// Workspace owns the local field and gradient buffers of a pipeline. Calls
// on one Workspace are serialized; use one Workspace per concurrent caller.
type Workspace struct {
	mu             sync.Mutex
	alloc          memory.Allocator
	tables         TableProvider
	parallelDegree int
	strict         bool
	verbose        bool
	local, out     []float64
}

type Option func(ws *Workspace)

func WithAllocator(alloc memory.Allocator) Option {
	return func(ws *Workspace) { ws.alloc = alloc }
}

func WithTables(tp TableProvider) Option {
	return func(ws *Workspace) { ws.tables = tp }
}

// WithParallelDegree sets the number of goroutines per call, zero means one
// per CPU.
func WithParallelDegree(np int) Option {
	return func(ws *Workspace) { ws.parallelDegree = np }
}

// WithStrict accepts only (D1D, Q1D) pairs that have a fixed size kernel.
func WithStrict(strict bool) Option {
	return func(ws *Workspace) { ws.strict = strict }
}

func WithVerbose(verbose bool) Option {
	return func(ws *Workspace) { ws.verbose = verbose }
}

func NewWorkspace(opts ...Option) (ws *Workspace) {
	ws = &Workspace{}
	for _, opt := range opts {
		opt(ws)
	}
	if ws.alloc == nil {
		ws.alloc = memory.NewHostAllocator(0)
	}
	if ws.tables == nil {
		ws.tables = basis.NewProvider()
	}
	return
}

// Dof2QuadGrad evaluates the gradient of the 2 component field in at the
// points of ir on every element of fes. The returned Data aliases the
// Workspace output buffer and is valid until the next call or Release.
func (ws *Workspace) Dof2QuadGrad(fes FiniteElementSpace, ir basis.IntegrationRule,
	in []float64) (gf GradientField, err error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	var (
		k  *kernel.Kernel
		tb *basis.Tables
	)
	if err = checkSpace(fes, in); err != nil {
		return
	}
	var (
		order = fes.GetOrder()
		NE    = fes.NumElements()
		sh    = kernel.Shape{D1D: order + 1, Q1D: ir.NumPoints1D()}
	)
	if ir.Order < 0 {
		err = configError("integration order", ir.Order, ">= 0")
		return
	}
	if k, err = kernel.Lookup(sh, ws.strict); err != nil {
		err = &ConfigError{Field: "kernel shape", Got: sh, Want: kernel.Specializations(), cause: err}
		return
	}
	if tb, err = ws.tables.GetBasisTables(fes.Geometry(), order, ir); err != nil {
		err = errors.Wrapf(err, "qupdate: basis tables for order %d, rule order %d", order, ir.Order)
		return
	}
	if tb.D1D != sh.D1D || tb.Q1D != sh.Q1D {
		err = errors.Errorf("qupdate: basis tables are (D1D=%d, Q1D=%d), space and rule need %v",
			tb.D1D, tb.Q1D, sh)
		return
	}
	var (
		localSize = utils.LocalSize(2, sh.D1D, NE)
		outSize   = utils.GradSize(sh.NumQuad(), NE)
	)
	if ws.local, err = ws.reserve(ws.local, localSize); err != nil {
		err = errors.Wrap(err, "qupdate: local field buffer")
		return
	}
	if ws.out, err = ws.reserve(ws.out, outSize); err != nil {
		err = errors.Wrap(err, "qupdate: gradient buffer")
		return
	}
	if err = fes.GlobalToLocal(in, ws.local); err != nil {
		err = errors.Wrap(err, "qupdate: global to local gather")
		return
	}
	k.ParallelDegree = ws.parallelDegree
	if ws.verbose {
		fmt.Printf("Dof2QuadGrad: NE = %d, %v, specialized = %v\n", NE, sh, k.Specialized)
	}
	k.Apply(tb, NE, ws.local, ws.out)
	gf = GradientField{
		Data:        ws.out,
		NumElements: NE,
		Q1D:         sh.Q1D,
		NumQuad:     sh.NumQuad(),
	}
	return
}

func checkSpace(fes FiniteElementSpace, in []float64) (err error) {
	if fes == nil {
		return configError("finite element space", nil, "non nil")
	}
	if dim := fes.Dimension(); dim != 2 {
		return configError("mesh dimension", dim, 2)
	}
	if vdim := fes.VDim(); vdim != 2 {
		return configError("vector dimension", vdim, 2)
	}
	if geom := fes.Geometry(); geom != basis.Square {
		return configError("element geometry", geom, basis.Square)
	}
	if order := fes.GetOrder(); order < 0 {
		return configError("polynomial order", order, ">= 0")
	}
	D1D := fes.GetOrder() + 1
	if ndof := fes.DofsPerElement(); ndof != D1D*D1D {
		return configError("dofs per element", ndof, D1D*D1D)
	}
	if NE := fes.NumElements(); NE < 0 {
		return configError("element count", NE, ">= 0")
	}
	if len(in) != fes.VSize() {
		return configError("input vector length", len(in), fes.VSize())
	}
	return
}

// reserve returns a buffer of length n, reusing buf when it is large enough.
func (ws *Workspace) reserve(buf []float64, n int) ([]float64, error) {
	if buf != nil && cap(buf) >= n {
		return buf[:n], nil
	}
	ws.alloc.Free(buf)
	return ws.alloc.Alloc(n)
}

// Release hands the buffers back to the allocator.
func (ws *Workspace) Release() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.alloc.Free(ws.local)
	ws.alloc.Free(ws.out)
	ws.local, ws.out = nil, nil
}
