package qupdate

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/qgrad/basis"
)

// Job is one gradient evaluation for EvaluateAll.
type Job struct {
	Space FiniteElementSpace
	Rule  basis.IntegrationRule
	Input []float64
}

// EvaluateAll runs the jobs concurrently, each with its own Workspace, and
// returns detached results in job order. Basis tables are shared between
// jobs unless opts supply a provider. The first failure cancels jobs that
// have not started.
func EvaluateAll(ctx context.Context, jobs []Job, opts ...Option) (results []GradientField, err error) {
	var (
		g, gctx = errgroup.WithContext(ctx)
		shared  = []Option{WithTables(basis.NewProvider())}
	)
	opts = append(shared, opts...)
	results = make([]GradientField, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ws := NewWorkspace(opts...)
			defer ws.Release()
			gf, err := ws.Dof2QuadGrad(job.Space, job.Rule, job.Input)
			if err != nil {
				return errors.Wrapf(err, "job %d", i)
			}
			results[i] = gf.Clone()
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		results = nil
	}
	return
}
