package system

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a resource snapshot of the current process
type Stats struct {
	Elapsed       time.Duration
	RSSBytes      uint64
	CPUPercent    float64
	HeapBytes     uint64
	SystemUsedPct float64
}

// ProcessStats samples the running process. start is when the work began.
func ProcessStats(start time.Time) (Stats, error) {
	s := Stats{Elapsed: time.Since(start)}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapBytes = ms.HeapAlloc

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return s, fmt.Errorf("failed to inspect process: %w", err)
	}

	mi, err := p.MemoryInfo()
	if err != nil {
		return s, fmt.Errorf("failed to read process memory: %w", err)
	}
	s.RSSBytes = mi.RSS

	if cpu, err := p.CPUPercent(); err == nil {
		s.CPUPercent = cpu
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		s.SystemUsedPct = vm.UsedPercent
	}

	return s, nil
}
