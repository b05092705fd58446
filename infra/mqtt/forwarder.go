package mqtt

import (
	"context"
	"sync"
	"time"

	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/logger"
	coremon "github.com/kilianp07/powerplan/core/monitoring"
	coremqtt "github.com/kilianp07/powerplan/core/mqtt"
)

// DispatchReport summarises the publication of one plan.
type DispatchReport struct {
	PlanID  string
	Sent    int
	Acked   int
	Failed  []string
	Unacked []string
}

// Dispatch publishes one setpoint per allocation of ev and waits for the
// acknowledgments in parallel. Failed plans are ignored.
func Dispatch(ev events.PlanEvent, pub coremqtt.SetpointPublisher, ackTimeout time.Duration, log logger.Logger) DispatchReport {
	rep := DispatchReport{PlanID: ev.PlanID}
	if ev.Err != nil || len(ev.Allocations) == 0 {
		return rep
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	type pending struct {
		plant string
		id    string
	}
	var sent []pending
	for _, a := range ev.Allocations {
		id, err := pub.SendSetpoint(coremqtt.Setpoint{PlanID: ev.PlanID, Plant: a.Name, PowerMW: a.P})
		if err != nil {
			log.Errorf("setpoint for %s not sent: %v", a.Name, err)
			rep.Failed = append(rep.Failed, a.Name)
			continue
		}
		sent = append(sent, pending{plant: a.Name, id: id})
	}
	rep.Sent = len(sent)

	acked := make([]bool, len(sent))
	var wg sync.WaitGroup
	for i, p := range sent {
		wg.Add(1)
		go func(i int, p pending) {
			defer wg.Done()
			ok, err := pub.WaitForAck(p.id, ackTimeout)
			if err != nil {
				log.Warnf("setpoint %s for %s: %v", p.id, p.plant, err)
			}
			acked[i] = ok
		}(i, p)
	}
	wg.Wait()
	for i, p := range sent {
		if acked[i] {
			rep.Acked++
		} else {
			rep.Unacked = append(rep.Unacked, p.plant)
		}
	}
	log.Infof("plan %s: %d setpoints sent, %d acknowledged", ev.PlanID, rep.Sent, rep.Acked)
	return rep
}

// ForwardPlans dispatches every successful plan read from sub until ctx is
// done or sub is closed.
func ForwardPlans(ctx context.Context, sub <-chan events.PlanEvent, pub coremqtt.SetpointPublisher, ackTimeout time.Duration, log logger.Logger) {
	defer coremon.Recover("mqtt")
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			Dispatch(ev, pub, ackTimeout, log)
		}
	}
}
