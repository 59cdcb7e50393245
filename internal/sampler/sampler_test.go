package sampler

import (
	"errors"
	"testing"
	"time"

	"github.com/prodwatch/prodwatch/internal/metrics"
	"github.com/prodwatch/prodwatch/internal/sysinfo"
)

// fakeReader returns canned values, with per-subsystem error injection.
type fakeReader struct {
	cpu     float64
	mem     sysinfo.MemoryStat
	disk    float64
	net     sysinfo.NetworkStat
	cpuErr  error
	netErr  error
	diskErr error
}

func (f fakeReader) CPUPercent() (float64, error)          { return f.cpu, f.cpuErr }
func (f fakeReader) Memory() (sysinfo.MemoryStat, error)   { return f.mem, nil }
func (f fakeReader) DiskPercent() (float64, error)         { return f.disk, f.diskErr }
func (f fakeReader) Network() (sysinfo.NetworkStat, error) { return f.net, f.netErr }
func (f fakeReader) LoadAverage() ([3]float64, error)      { return [3]float64{}, nil }

func TestSample_RecordsAllMetrics(t *testing.T) {
	store := metrics.New(time.Hour)
	s := New(fakeReader{
		cpu:  42.5,
		mem:  sysinfo.MemoryStat{UsedPercent: 61.2, UsedMB: 2048},
		disk: 73.9,
		net:  sysinfo.NetworkStat{BytesSent: 100, BytesRecv: 200},
	}, store)

	s.Sample()

	wants := map[string]float64{
		MetricCPUPercent:       42.5,
		MetricMemoryPercent:    61.2,
		MetricMemoryMB:         2048,
		MetricDiskPercent:      73.9,
		MetricNetworkBytesSent: 100,
		MetricNetworkBytesRecv: 200,
	}
	for name, want := range wants {
		got := store.Window(name, time.Minute)
		if len(got) != 1 || got[0] != want {
			t.Errorf("%s: got %v, want [%v]", name, got, want)
		}
	}
}

func TestSample_FailedReadsAreSkippedNotFatal(t *testing.T) {
	store := metrics.New(time.Hour)
	s := New(fakeReader{
		mem:     sysinfo.MemoryStat{UsedPercent: 50},
		cpuErr:  errors.New("no cpu data"),
		diskErr: errors.New("mount gone"),
		netErr:  errors.New("no counters"),
	}, store)

	s.Sample()

	for _, absent := range []string{MetricCPUPercent, MetricDiskPercent, MetricNetworkBytesSent} {
		if got := store.Window(absent, time.Minute); len(got) != 0 {
			t.Errorf("%s: got %v, want no samples", absent, got)
		}
	}
	if got := store.Window(MetricMemoryPercent, time.Minute); len(got) != 1 {
		t.Errorf("memory should still be recorded, got %v", got)
	}
}
