package lock

import (
	"context"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessLiveness checks the process table.
func ProcessLiveness() Liveness {
	return LivenessFunc(func(ctx context.Context, pid int) (bool, error) {
		return process.PidExistsWithContext(ctx, int32(pid))
	})
}
