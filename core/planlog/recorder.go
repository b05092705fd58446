package planlog

import (
	"context"

	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/logger"
	"github.com/kilianp07/powerplan/core/monitoring"
)

// Run appends every event received on sub to store until ctx is done or
// sub is closed. Append failures are logged and do not stop the loop.
func Run(ctx context.Context, sub <-chan events.PlanEvent, store Store, log logger.Logger) {
	defer monitoring.Recover("planlog")
	if log == nil {
		log = logger.NopLogger{}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := store.Append(ctx, FromEvent(ev)); err != nil {
				log.Errorf("plan log append %s: %v", ev.PlanID, err)
			}
		}
	}
}
