package sysinfo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"evdash/backend/services/fleet-api/internal/models"
)

const bytesPerGB = 1 << 30

// Sampler reads host CPU and memory usage.
type Sampler struct {
	interval time.Duration
	now      func() time.Time
}

// NewSampler returns sampler. CPU usage is measured over interval.
func NewSampler(interval time.Duration) *Sampler {
	return &Sampler{interval: interval, now: time.Now}
}

// Sample blocks for the sampling interval.
func (s *Sampler) Sample(ctx context.Context) (models.SystemUsage, error) {
	percents, err := cpu.PercentWithContext(ctx, s.interval, false)
	if err != nil {
		return models.SystemUsage{}, fmt.Errorf("cpu percent: %w", err)
	}
	if len(percents) == 0 {
		return models.SystemUsage{}, errors.New("cpu percent: no samples")
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return models.SystemUsage{}, fmt.Errorf("virtual memory: %w", err)
	}

	return models.SystemUsage{
		CPUPercent: percents[0],
		RAMPercent: vm.UsedPercent,
		RAMUsedGB:  round2(float64(vm.Used) / bytesPerGB),
		RAMTotalGB: round2(float64(vm.Total) / bytesPerGB),
		Timestamp:  float64(s.now().UnixNano()) / float64(time.Second),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
