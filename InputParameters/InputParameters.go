package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

// FieldCoefficients define u(x,y) = C0 + Cx*x + Cy*y + Cxy*x*y
type FieldCoefficients struct {
	C0  float64 `yaml:"C0"`
	Cx  float64 `yaml:"Cx"`
	Cy  float64 `yaml:"Cy"`
	Cxy float64 `yaml:"Cxy"`
}

func (fc FieldCoefficients) Value(x, y float64) float64 {
	return fc.C0 + fc.Cx*x + fc.Cy*y + fc.Cxy*x*y
}

func (fc FieldCoefficients) Gradient(x, y float64) (dudx, dudy float64) {
	return fc.Cx + fc.Cxy*y, fc.Cy + fc.Cxy*x
}

// Parameters obtained from the YAML input file
type GradParameters struct {
	Title           string               `yaml:"Title"`
	NX              int                  `yaml:"NX"`
	NY              int                  `yaml:"NY"`
	Lx              float64              `yaml:"Lx"`
	Ly              float64              `yaml:"Ly"`
	PolynomialOrder int                  `yaml:"PolynomialOrder"`
	QuadratureOrder int                  `yaml:"QuadratureOrder"` // Zero selects 2*PolynomialOrder+2
	Iterations      int                  `yaml:"Iterations"`
	Field           [2]FieldCoefficients `yaml:"Field"`
}

func (ip *GradParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return errors.Wrap(err, "unable to parse input parameters")
	}
	ip.setDefaults()
	return ip.Validate()
}

func (ip *GradParameters) setDefaults() {
	if ip.Lx == 0 {
		ip.Lx = 1
	}
	if ip.Ly == 0 {
		ip.Ly = 1
	}
	if ip.QuadratureOrder == 0 {
		ip.QuadratureOrder = 2*ip.PolynomialOrder + 2
	}
	if ip.Iterations == 0 {
		ip.Iterations = 1
	}
}

func (ip *GradParameters) Validate() (err error) {
	switch {
	case ip.NX < 1 || ip.NY < 1:
		err = errors.Errorf("NX and NY must be positive, have %d x %d", ip.NX, ip.NY)
	case ip.PolynomialOrder < 1:
		err = errors.Errorf("PolynomialOrder must be at least 1, have %d", ip.PolynomialOrder)
	case ip.QuadratureOrder < 0:
		err = errors.Errorf("QuadratureOrder must not be negative, have %d", ip.QuadratureOrder)
	case ip.Iterations < 0:
		err = errors.Errorf("Iterations must not be negative, have %d", ip.Iterations)
	}
	return
}

func (ip *GradParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d x %d]\t\t\t= Elements\n", ip.NX, ip.NY)
	fmt.Printf("[%8.5f x %8.5f]\t= Domain\n", ip.Lx, ip.Ly)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%d]\t\t\t\t= Quadrature Order\n", ip.QuadratureOrder)
	fmt.Printf("[%d]\t\t\t\t= Iterations\n", ip.Iterations)
	for c, fc := range ip.Field {
		fmt.Printf("u%d = %g + %g*x + %g*y + %g*x*y\n", c, fc.C0, fc.Cx, fc.Cy, fc.Cxy)
	}
}
