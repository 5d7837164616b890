//go:build linux

package cmd

import (
	"runtime"

	perf "github.com/hodgesds/perf-utils"
	"github.com/pkg/errors"
)

// countInstructions returns the CPU instructions retired while running f.
func countInstructions(f func() error) (count uint64, err error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	var pv *perf.ProfileValue
	if pv, err = perf.CPUInstructions(f); err != nil {
		return 0, errors.Wrap(err, "perf instruction counter")
	}
	return pv.Value, nil
}
