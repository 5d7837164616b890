// Package kernel evaluates the gradient of a 2 component field at the
// tensor quadrature points of quadrilateral elements by sum factorization.
//
// For each element and each nodal row dy the nodal values are first
// contracted along x against the value and derivative tables, giving vx and
// vDx at the Q1D abscissas, then contracted along y into the quadrature
// accumulator. The cost per element is O(D1D*Q1D*(D1D+Q1D)) instead of the
// O(D1D^2*Q1D^2) of the direct contraction. Sums over dx complete before the
// sum over dy; that order is fixed for every element so results do not
// depend on how elements are scheduled.
package kernel

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/notargets/qgrad/utils"
)

const (
	MaxD1D = 16
	MaxQ1D = 16
)

var ErrUnsupportedShape = errors.New("kernel: unsupported (D1D, Q1D)")

// Shape is the pair of 1D sizes a kernel is built for.
type Shape struct {
	D1D, Q1D int
}

func (sh Shape) String() string {
	return fmt.Sprintf("(D1D=%d, Q1D=%d)", sh.D1D, sh.Q1D)
}

func (sh Shape) NumQuad() int { return sh.Q1D * sh.Q1D }

// rangeKernel processes elements [kMin, kMax) of an NE element field.
type rangeKernel func(sh Shape, NE, kMin, kMax int, B, G, in, out []float64)

// Fixed size kernels, filled in by init.
var specialized = make(map[Shape]rangeKernel)

func register(sh Shape, f rangeKernel) {
	if _, exists := specialized[sh]; exists {
		panic(fmt.Sprintf("kernel %v registered twice", sh))
	}
	specialized[sh] = f
}

// Specializations lists the shapes with fixed size kernels.
func Specializations() (shapes []Shape) {
	for sh := range specialized {
		shapes = append(shapes, sh)
	}
	sort.Slice(shapes, func(i, j int) bool {
		if shapes[i].D1D != shapes[j].D1D {
			return shapes[i].D1D < shapes[j].D1D
		}
		return shapes[i].Q1D < shapes[j].Q1D
	})
	return
}

// Kernel is a dispatched gradient kernel for one Shape.
type Kernel struct {
	Shape
	Specialized    bool
	ParallelDegree int // Goroutines used by Apply, zero means one per CPU
	fn             rangeKernel
}

// Lookup resolves sh to a fixed size kernel when one is registered and to
// the runtime sized kernel otherwise. With strict set only fixed size
// kernels are accepted.
func Lookup(sh Shape, strict bool) (k *Kernel, err error) {
	if sh.D1D < 1 || sh.D1D > MaxD1D || sh.Q1D < 1 || sh.Q1D > MaxQ1D {
		err = errors.Wrapf(ErrUnsupportedShape, "%v outside [1,%d] x [1,%d]", sh, MaxD1D, MaxQ1D)
		return
	}
	if f, ok := specialized[sh]; ok {
		k = &Kernel{Shape: sh, Specialized: true, fn: f}
		return
	}
	if strict {
		err = errors.Wrapf(ErrUnsupportedShape, "no fixed size kernel for %v, have %v", sh, Specializations())
		return
	}
	k = &Kernel{Shape: sh, fn: gradVector2D}
	return
}

// Validate checks the lengths of the local input and gradient output of an
// NE element call.
func Validate(sh Shape, NE, lenIn, lenOut int) (err error) {
	if NE < 0 {
		return errors.Errorf("kernel: negative element count %d", NE)
	}
	if want := utils.LocalSize(2, sh.D1D, NE); lenIn != want {
		return errors.Errorf("kernel: local field has length %d, %v with %d elements needs %d",
			lenIn, sh, NE, want)
	}
	if want := utils.GradSize(sh.NumQuad(), NE); lenOut != want {
		return errors.Errorf("kernel: gradient field has length %d, %v with %d elements needs %d",
			lenOut, sh, NE, want)
	}
	return
}
