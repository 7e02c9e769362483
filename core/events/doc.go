// Package events defines the allocation related events emitted on the event bus.
//
// Available event types:
//   - AssignmentEvent: a unit was reserved for an incident
//   - NoUnitEvent: a request found no eligible unit
//   - RebalanceEvent: summary of a rebalance run
//   - FleetResetEvent: the fleet was reset to available
package events
