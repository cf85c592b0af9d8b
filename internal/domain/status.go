package domain

import (
	"fmt"
	"strings"
)

// Status is the canonical order/delivery status enum. The same closed set is
// shared by the order header and the delivery projection so the two can never
// drift apart.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipping   Status = "shipping"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusConfirmed:  {},
	StatusProcessing: {},
	StatusShipping:   {},
	StatusDelivered:  {},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// ParseStatus normalizes a status string case-insensitively.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := allStatuses[status]; !ok {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
	return status, nil
}

// deliveryTransitions is the allowed-next-states table for the delivery flow.
// pending and cancelled are not valid entry states, and delivered is terminal.
var deliveryTransitions = map[Status][]Status{
	StatusConfirmed:  {StatusProcessing, StatusShipping},
	StatusProcessing: {StatusShipping},
	StatusShipping:   {StatusDelivered},
}

// CanTransitionTo reports whether the delivery flow allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range deliveryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Assignable reports whether a shipper may be assigned while the order is in
// this status. Assignment is a guarded transition so it cannot regress an
// order that is already in transit.
func (s Status) Assignable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// RevenueStatuses is the named subset of statuses whose orders count toward
// reported revenue.
var RevenueStatuses = []Status{StatusCompleted, StatusDelivered}

// CountsAsRevenue reports whether an order in this status is revenue.
func (s Status) CountsAsRevenue() bool {
	for _, rs := range RevenueStatuses {
		if s == rs {
			return true
		}
	}
	return false
}
