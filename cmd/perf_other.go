//go:build !linux

package cmd

import (
	"runtime"

	"github.com/pkg/errors"
)

func countInstructions(f func() error) (count uint64, err error) {
	if err = f(); err != nil {
		return
	}
	return 0, errors.Errorf("instruction counting is not supported on %s", runtime.GOOS)
}
