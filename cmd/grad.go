/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/qgrad/InputParameters"
	"github.com/notargets/qgrad/basis"
	"github.com/notargets/qgrad/kernel"
	"github.com/notargets/qgrad/mesh"
	"github.com/notargets/qgrad/qupdate"
	"github.com/notargets/qgrad/utils"
)

type ModelGrad struct {
	ICFile         string
	Check          bool
	Perf           bool
	Profile        string
	ParallelDegree int
	Strict         bool
	Verbose        bool
}

// GradReport summarizes a run; errors are max norms over all entries.
type GradReport struct {
	NumElements    int
	Shape          kernel.Shape
	Specialized    bool
	Iterations     int
	Elapsed        time.Duration
	AnalyticError  float64
	DirectError    float64 // NaN unless checked
	Instructions   uint64  // Zero unless counted
	GradientValues []float64
}

// GradCmd represents the grad command
var GradCmd = &cobra.Command{
	Use:   "grad",
	Short: "Evaluate quadrature point gradients of a bilinear field on a quad mesh",
	Long: `Evaluate quadrature point gradients of a bilinear field on a quad mesh,
then compare them with the analytic gradient and optionally a direct contraction`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		mg := &ModelGrad{
			ParallelDegree: viper.GetInt("parallel"),
			Strict:         viper.GetBool("strict"),
			Verbose:        viper.GetBool("verbose"),
		}
		if mg.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		mg.Check, _ = cmd.Flags().GetBool("check")
		mg.Perf, _ = cmd.Flags().GetBool("perf")
		mg.Profile, _ = cmd.Flags().GetString("profile")
		ip := processGradInput(mg)
		if mg.Verbose {
			ip.Print()
		}
		switch mg.Profile {
		case "":
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		default:
			fmt.Printf("error: unknown profile type %q, use cpu or mem\n", mg.Profile)
			os.Exit(1)
		}
		var rpt *GradReport
		if rpt, err = RunGrad(mg, ip); err != nil {
			if qupdate.IsConfigError(err) {
				fmt.Printf("configuration error: %s\n", err.Error())
				os.Exit(1)
			}
			panic(err)
		}
		rpt.Print()
	},
}

func processGradInput(mg *ModelGrad) (ip *InputParameters.GradParameters) {
	var (
		err error
	)
	if len(mg.ICFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Bilinear patch"
NX: 16
NY: 8
Lx: 2.
Ly: 1.
PolynomialOrder: 2
QuadratureOrder: 6 # Default is 2*PolynomialOrder+2
Iterations: 10
Field:
  - C0: 1.
    Cx: 2.
    Cy: -3.
    Cxy: 1.
  - Cx: 1.
    Cy: -4.
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	var data []byte
	if data, err = ioutil.ReadFile(mg.ICFile); err != nil {
		panic(err)
	}
	ip = &InputParameters.GradParameters{}
	if err = ip.Parse(data); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	return
}

func init() {
	rootCmd.AddCommand(GradCmd)
	GradCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- NX, NY (element counts)\n\t- PolynomialOrder\n\t- Field coefficients")
	GradCmd.Flags().BoolP("check", "c", false, "compare against a direct contraction of the basis tables")
	GradCmd.Flags().Bool("perf", false, "count CPU instructions retired by the last kernel call (linux)")
	GradCmd.Flags().String("profile", "", "write a cpu or mem profile to the working directory")
}

func RunGrad(mg *ModelGrad, ip *InputParameters.GradParameters) (rpt *GradReport, err error) {
	var (
		m   *mesh.QuadMesh
		fes *mesh.H1Space
		in  []float64
		gf  qupdate.GradientField
		ir  = basis.IntegrationRule{Order: ip.QuadratureOrder}
	)
	if m, err = mesh.NewQuadMesh(ip.NX, ip.NY, ip.Lx, ip.Ly); err != nil {
		return
	}
	if fes, err = mesh.NewH1Space(m, ip.PolynomialOrder, 2); err != nil {
		return
	}
	if in, err = fes.Project(func(x, y float64) [2]float64 {
		return [2]float64{ip.Field[0].Value(x, y), ip.Field[1].Value(x, y)}
	}); err != nil {
		return
	}
	provider := basis.NewProvider()
	ws := qupdate.NewWorkspace(
		qupdate.WithTables(provider),
		qupdate.WithParallelDegree(mg.ParallelDegree),
		qupdate.WithStrict(mg.Strict),
		qupdate.WithVerbose(mg.Verbose),
	)
	defer ws.Release()
	rpt = &GradReport{
		NumElements: m.NumElements(),
		Shape:       kernel.Shape{D1D: ip.PolynomialOrder + 1, Q1D: ir.NumPoints1D()},
		Iterations:  ip.Iterations,
		DirectError: math.NaN(),
	}
	evaluate := func() (err error) {
		gf, err = ws.Dof2QuadGrad(fes, ir, in)
		return
	}
	start := time.Now()
	for it := 0; it < ip.Iterations; it++ {
		if err = evaluate(); err != nil {
			return nil, err
		}
	}
	rpt.Elapsed = time.Since(start)
	if mg.Perf {
		if rpt.Instructions, err = countInstructions(evaluate); err != nil {
			fmt.Printf("instruction count unavailable: %s\n", err.Error())
			err = nil
		}
	}
	if ip.Iterations == 0 {
		if err = evaluate(); err != nil {
			return nil, err
		}
	}
	rpt.Specialized = kernelIsSpecialized(rpt.Shape)
	rpt.GradientValues = gf.Clone().Data
	rpt.AnalyticError = analyticError(m, ir, ip, gf)
	if mg.Check {
		var tb *basis.Tables
		if tb, err = provider.GetBasisTables(fes.Geometry(), fes.GetOrder(), ir); err != nil {
			return nil, errors.Wrap(err, "direct check")
		}
		var (
			local  = make([]float64, utils.LocalSize(2, tb.D1D, rpt.NumElements))
			direct = make([]float64, len(gf.Data))
		)
		if err = fes.GlobalToLocal(in, local); err != nil {
			return nil, errors.Wrap(err, "direct check")
		}
		kernel.Direct(tb, rpt.NumElements, local, direct)
		rpt.DirectError = floats.Distance(gf.Data, direct, math.Inf(1))
	}
	return
}

func kernelIsSpecialized(sh kernel.Shape) bool {
	k, err := kernel.Lookup(sh, false)
	return err == nil && k.Specialized
}

// analyticError compares against the exact gradient mapped to reference
// coordinates, d/dxi = hx*d/dx and d/deta = hy*d/dy.
func analyticError(m *mesh.QuadMesh, ir basis.IntegrationRule, ip *InputParameters.GradParameters,
	gf qupdate.GradientField) float64 {
	var (
		X, _   = ir.Points1D()
		hx, hy = m.ElementSize()
		exact  = make([]float64, len(gf.Data))
	)
	for e := 0; e < gf.NumElements; e++ {
		for qy := 0; qy < gf.Q1D; qy++ {
			for qx := 0; qx < gf.Q1D; qx++ {
				var (
					q    = utils.QuadIndex(qx, qy, gf.Q1D)
					x, y = m.ToPhysical(e, X[qx], X[qy])
				)
				for row := 0; row < 2; row++ {
					dudx, dudy := ip.Field[row].Gradient(x, y)
					exact[utils.GradIndex(row, 0, q, e, gf.NumQuad)] = hx * dudx
					exact[utils.GradIndex(row, 1, q, e, gf.NumQuad)] = hy * dudy
				}
			}
		}
	}
	if len(exact) == 0 {
		return 0
	}
	return floats.Distance(gf.Data, exact, math.Inf(1))
}

func (rpt *GradReport) Print() {
	fmt.Printf("[%d]\t\t\t\t= Elements\n", rpt.NumElements)
	fmt.Printf("%v specialized=%v\t= Kernel\n", rpt.Shape, rpt.Specialized)
	if rpt.Iterations > 0 {
		per := rpt.Elapsed / time.Duration(rpt.Iterations)
		fmt.Printf("%v (%v per call)\t= Elapsed\n", rpt.Elapsed, per)
	}
	fmt.Printf("%8.5e\t\t= Max error vs analytic\n", rpt.AnalyticError)
	if !math.IsNaN(rpt.DirectError) {
		fmt.Printf("%8.5e\t\t= Max difference vs direct contraction\n", rpt.DirectError)
	}
	if rpt.Instructions != 0 {
		fmt.Printf("[%d]\t\t= Instructions\n", rpt.Instructions)
	}
}
