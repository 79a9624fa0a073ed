// Package latency summarises the durations of repeated requests using an
// HDR histogram.
package latency

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// Recordable range in microseconds: 1µs to 1 hour
	minMicros = 1
	maxMicros = 3600000000
	sigFigs   = 3
)

// Summary holds latency statistics for a set of requests.
type Summary struct {
	Count  int64
	Errors int64
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration
	P50    time.Duration
	P90    time.Duration
	P95    time.Duration
	P99    time.Duration
}

// Recorder collects request latencies. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	hist   *hdrhistogram.Histogram
	errors int64
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		hist: hdrhistogram.New(minMicros, maxMicros, sigFigs),
	}
}

// Record adds one successful request duration. Values outside the
// recordable range are clamped.
func (r *Recorder) Record(d time.Duration) {
	micros := d.Microseconds()
	if micros < minMicros {
		micros = minMicros
	}
	if micros > maxMicros {
		micros = maxMicros
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// RecordValue only fails for out-of-range values, which are clamped above
	_ = r.hist.RecordValue(micros)
}

// RecordError counts a failed request.
func (r *Recorder) RecordError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors++
}

// Summary returns the statistics recorded so far.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	micros := func(v int64) time.Duration {
		return time.Duration(v) * time.Microsecond
	}

	s := Summary{
		Count:  r.hist.TotalCount(),
		Errors: r.errors,
	}
	if s.Count == 0 {
		return s
	}

	s.Min = micros(r.hist.Min())
	s.Max = micros(r.hist.Max())
	s.Mean = time.Duration(r.hist.Mean() * float64(time.Microsecond))
	s.StdDev = time.Duration(r.hist.StdDev() * float64(time.Microsecond))
	s.P50 = micros(r.hist.ValueAtQuantile(50))
	s.P90 = micros(r.hist.ValueAtQuantile(90))
	s.P95 = micros(r.hist.ValueAtQuantile(95))
	s.P99 = micros(r.hist.ValueAtQuantile(99))
	return s
}
