package sysinfo

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// MemoryStat is a point-in-time view of host memory.
type MemoryStat struct {
	UsedPercent float64
	UsedMB      float64
}

// NetworkStat is the host-wide network counter totals.
type NetworkStat struct {
	BytesSent uint64
	BytesRecv uint64
}

// Reader reads host resource usage. Implementations must be safe for
// concurrent use and must not block beyond a single syscall round.
type Reader interface {
	CPUPercent() (float64, error)
	Memory() (MemoryStat, error)
	DiskPercent() (float64, error)
	Network() (NetworkStat, error)
	LoadAverage() ([3]float64, error)
}

// Host reads resource usage of the local machine via gopsutil.
// DiskPath is the mount point measured for disk usage; "/" when empty.
type Host struct {
	DiskPath string
}

// NewHost returns a Host measuring the root filesystem.
func NewHost() *Host { return &Host{DiskPath: "/"} }

// CPUPercent returns overall CPU utilization since the previous call.
// The zero interval keeps it non-blocking; the first call returns the
// utilization since boot.
func (h *Host) CPUPercent() (float64, error) {
	pcts, err := cpu.Percent(0, false)
	if err != nil {
		return 0, fmt.Errorf("sysinfo: cpu percent: %w", err)
	}
	if len(pcts) == 0 {
		return 0, fmt.Errorf("sysinfo: cpu percent: no data")
	}
	return pcts[0], nil
}

func (h *Host) Memory() (MemoryStat, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemoryStat{}, fmt.Errorf("sysinfo: virtual memory: %w", err)
	}
	return MemoryStat{
		UsedPercent: vm.UsedPercent,
		UsedMB:      float64(vm.Used) / 1024 / 1024,
	}, nil
}

func (h *Host) DiskPercent() (float64, error) {
	path := h.DiskPath
	if path == "" {
		path = "/"
	}
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("sysinfo: disk usage %q: %w", path, err)
	}
	return usage.UsedPercent, nil
}

func (h *Host) Network() (NetworkStat, error) {
	counters, err := net.IOCounters(false)
	if err != nil {
		return NetworkStat{}, fmt.Errorf("sysinfo: net counters: %w", err)
	}
	if len(counters) == 0 {
		return NetworkStat{}, fmt.Errorf("sysinfo: net counters: no data")
	}
	return NetworkStat{
		BytesSent: counters[0].BytesSent,
		BytesRecv: counters[0].BytesRecv,
	}, nil
}

func (h *Host) LoadAverage() ([3]float64, error) {
	avg, err := load.Avg()
	if err != nil {
		return [3]float64{}, fmt.Errorf("sysinfo: load average: %w", err)
	}
	return [3]float64{avg.Load1, avg.Load5, avg.Load15}, nil
}
