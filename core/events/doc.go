// Package events defines the events emitted on the event bus.
//
// Available event types:
//   - PlanEvent: outcome of one production plan computation
package events
