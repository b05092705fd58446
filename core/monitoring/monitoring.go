package monitoring

import "time"

// FlushTimeout bounds how long a crashing goroutine waits for buffered
// reports.
const FlushTimeout = 2 * time.Second

// Monitor reports errors and panics to an external tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	CapturePanic(v any, tags map[string]string)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any, map[string]string)       {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init installs m as the process wide monitor. A nil m is ignored.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// Current returns the monitor installed by Init, or a NopMonitor.
func Current() Monitor { return current }

// CaptureException reports err with the given tags.
func CaptureException(err error, tags map[string]string) {
	current.CaptureException(err, tags)
}

// Recover reports a panic of the calling goroutine tagged with module, then
// panics again. It must be deferred directly.
func Recover(module string) {
	if r := recover(); r != nil {
		current.CapturePanic(r, map[string]string{"module": module})
		current.Flush(FlushTimeout)
		panic(r)
	}
}
