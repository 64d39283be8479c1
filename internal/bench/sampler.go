package bench

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// DefaultSampleInterval is how often the CPU sampler polls.
const DefaultSampleInterval = 50 * time.Millisecond

// Sampler records the average system CPU usage while a function runs.
type Sampler struct {
	Interval time.Duration

	// percent reports system-wide CPU usage since its previous call.
	percent func(ctx context.Context) (float64, error)
}

// NewSampler returns a sampler backed by gopsutil.
func NewSampler() *Sampler {
	return &Sampler{Interval: DefaultSampleInterval, percent: systemPercent}
}

func systemPercent(ctx context.Context) (float64, error) {
	values, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, fmt.Errorf("sampling cpu: %w", err)
	}

	if len(values) == 0 {
		return 0, nil
	}

	return values[0], nil
}

// Measure runs fn and returns its wall-clock time and the average CPU percent
// sampled while it ran. Sampling failures yield an average of zero.
func (s *Sampler) Measure(ctx context.Context, fn func() error) (time.Duration, float64, error) {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	percent := s.percent
	if percent == nil {
		percent = systemPercent
	}

	ctx, cancel := context.WithCancel(ctx)

	var (
		wg      sync.WaitGroup
		samples []float64
	)

	// Prime the baseline so the first sample covers the measured window only.
	_, _ = percent(ctx)

	wg.Add(1)

	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if v, err := percent(ctx); err == nil {
					samples = append(samples, v)
				}
			}
		}
	}()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	cancel()
	wg.Wait()

	if v, perr := percent(context.Background()); perr == nil {
		samples = append(samples, v)
	}

	return elapsed, average(samples), err
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64

	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
