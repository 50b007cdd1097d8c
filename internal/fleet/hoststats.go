package fleet

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"domes/pkg/domespb"
)

// sampleHostStats reads the gateway host's own resource usage, the same
// gopsutil/v3 subpackages the teacher's internal/cli/ui/ui.go samples for
// its live CPU/memory readout.
func sampleHostStats(_ context.Context) (*domespb.GetHostStatsResponse, error) {
	resp := &domespb.GetHostStatsResponse{}

	if uptime, err := host.Uptime(); err == nil {
		resp.UptimeSeconds = uptime
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		resp.LoadAverage1M = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		resp.MemUsedPercent = vm.UsedPercent
	}

	return resp, nil
}
