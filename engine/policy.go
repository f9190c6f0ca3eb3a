package engine

import (
	"fmt"
	"time"
)

// Rejection reasons surfaced by CanAcceptNewOrder. These are structured
// outcomes for the operator, not errors.
const (
	ReasonBusinessClosed     = "closed"
	ReasonThroughputExceeded = "throughput-exceeded"
)

// Policy holds the configurable acceptance rules for new orders.
// It is a read model: loaded from settings storage and never mutated here.
type Policy struct {
	AutoAccept         bool
	PrepBufferMinutes  int
	MaxOrdersPerHour   *int
	AllowScheduled     bool
	CancellationPolicy string
}

// Decision is the outcome of an acceptance check. Reason is set only
// when the order was rejected.
type Decision struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// Validate rejects malformed policies at the settings-update boundary.
func (p Policy) Validate() error {
	if p.PrepBufferMinutes < 0 {
		return fmt.Errorf("prep time buffer must not be negative, got %d", p.PrepBufferMinutes)
	}
	if p.MaxOrdersPerHour != nil && *p.MaxOrdersPerHour <= 0 {
		return fmt.Errorf("max orders per hour must be positive, got %d", *p.MaxOrdersPerHour)
	}
	return nil
}

// CanAcceptNewOrder decides whether a new order may be taken right now.
// Rules short-circuit in order: closed business first, then the hourly
// throughput cap. currentHourOrderCount is a caller-supplied snapshot of
// orders placed in the rolling hour ending at now; the policy keeps no
// counters of its own.
func (p Policy) CanAcceptNewOrder(currentHourOrderCount int, now time.Time, businessOpen bool) Decision {
	_ = now // reserved for scheduled-order windows

	if !businessOpen {
		return Decision{Reason: ReasonBusinessClosed}
	}
	if p.MaxOrdersPerHour != nil && currentHourOrderCount >= *p.MaxOrdersPerHour {
		return Decision{Reason: ReasonThroughputExceeded}
	}
	return Decision{Accepted: true}
}

// QuoteReadyMinutes returns the customer-facing estimate: the base item
// preparation time plus the configured buffer. The buffer is additive.
func (p Policy) QuoteReadyMinutes(baseItemPrepMinutes int) int {
	return baseItemPrepMinutes + p.PrepBufferMinutes
}
