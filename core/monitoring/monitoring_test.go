package monitoring

import (
	"errors"
	"testing"
	"time"
)

type recordMonitor struct {
	errs    []error
	panics  []any
	tags    map[string]string
	flushed bool
}

func (r *recordMonitor) CaptureException(err error, _ map[string]string) { r.errs = append(r.errs, err) }
func (r *recordMonitor) Flush(time.Duration)                             { r.flushed = true }

func (r *recordMonitor) CapturePanic(v any, tags map[string]string) {
	r.panics = append(r.panics, v)
	r.tags = tags
}

func TestRecoverReportsAndRepanics(t *testing.T) {
	mon := &recordMonitor{}
	Init(mon)
	defer Init(NopMonitor{})

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Fatalf("expected re-panic with boom, got %v", r)
			}
		}()
		defer Recover("planlog")
		panic("boom")
	}()

	if len(mon.panics) != 1 || mon.panics[0] != "boom" || !mon.flushed {
		t.Fatalf("panic not reported: %+v", mon)
	}
	if mon.tags["module"] != "planlog" {
		t.Fatalf("expected module tag, got %v", mon.tags)
	}
}

func TestCaptureException(t *testing.T) {
	mon := &recordMonitor{}
	Init(mon)
	defer Init(NopMonitor{})
	Init(nil)
	CaptureException(errors.New("x"), nil)
	if len(mon.errs) != 1 || Current() != mon {
		t.Fatalf("expected capture on the initialised monitor")
	}
}
