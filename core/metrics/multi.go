package metrics

import "errors"

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards ev to every sink and joins their errors.
func (m *MultiSink) RecordSolve(ev SolveEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordSolve(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordAllocations forwards evs to the sinks implementing
// AllocationRecorder.
func (m *MultiSink) RecordAllocations(evs []AllocationEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		r, ok := s.(AllocationRecorder)
		if !ok {
			continue
		}
		if err := r.RecordAllocations(evs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
