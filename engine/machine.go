package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AllowedTransitions defines the valid order status state machine.
// Completed and cancelled are terminal; a ready order can no longer be
// cancelled, only handed over.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s Status) bool {
	_, ok := AllowedTransitions[s]
	return ok
}

// CanTransition checks if a status transition is allowed.
func CanTransition(from, to Status) bool {
	allowed, exists := AllowedTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionError reports an attempted move not permitted by the state
// table, carrying both the current and the attempted status.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from '%s' to '%s'", e.From, e.To)
}

type ConfirmationKind string

const (
	ConfirmationAccepted ConfirmationKind = "accepted"
	ConfirmationReady    ConfirmationKind = "ready"
)

// ConfirmationEvent is the ephemeral acknowledgement shown to the
// operator after an accepted or ready transition. It is never persisted;
// the ConfirmationPresenter owns its lifetime.
type ConfirmationEvent struct {
	Kind        ConfirmationKind `json:"kind"`
	OrderNumber string           `json:"order_number"`
	CreatedAt   time.Time        `json:"created_at"`
}

// StatusNotification is the payload handed to the external dispatcher on
// every successful status change. Delivery and retry are the
// dispatcher's responsibility.
type StatusNotification struct {
	OrderID      uuid.UUID
	OrderNumber  string
	CustomerName string
	Status       Status
}

// Dispatcher forwards status notifications to chat/push channels.
// Implementations must not block the caller.
type Dispatcher interface {
	Dispatch(n StatusNotification)
}

// OrderRef is the slice of an order the state machine needs: identity
// for notifications plus the current status.
type OrderRef struct {
	ID           uuid.UUID
	Number       string
	CustomerName string
	Status       Status
}

// Machine enforces the order lifecycle and emits the side effects of a
// successful transition. It holds no per-order state; each order has a
// single logical owner issuing transitions, so the machine itself does
// not serialize concurrent callers.
type Machine struct {
	dispatcher Dispatcher
	presenter  *ConfirmationPresenter
}

// NewMachine wires the machine to its collaborators. Both may be nil,
// in which case the corresponding side effect is skipped.
func NewMachine(d Dispatcher, p *ConfirmationPresenter) *Machine {
	return &Machine{dispatcher: d, presenter: p}
}

// Transition validates the move from ref.Status to target and returns
// the resulting status; persisting it is the caller's job. Transitioning
// to the current status is a no-op success that emits nothing. On a real
// change the dispatcher is notified exactly once, and an accepted or
// ready target additionally raises a confirmation.
func (m *Machine) Transition(ref OrderRef, target Status) (Status, error) {
	if !IsValidStatus(target) {
		return ref.Status, &TransitionError{From: ref.Status, To: target}
	}
	if ref.Status == target {
		return target, nil
	}
	if !CanTransition(ref.Status, target) {
		return ref.Status, &TransitionError{From: ref.Status, To: target}
	}

	if m.dispatcher != nil {
		m.dispatcher.Dispatch(StatusNotification{
			OrderID:      ref.ID,
			OrderNumber:  ref.Number,
			CustomerName: ref.CustomerName,
			Status:       target,
		})
	}

	if m.presenter != nil {
		switch target {
		case StatusAccepted:
			m.presenter.Show(ConfirmationEvent{Kind: ConfirmationAccepted, OrderNumber: ref.Number, CreatedAt: time.Now()})
		case StatusReady:
			m.presenter.Show(ConfirmationEvent{Kind: ConfirmationReady, OrderNumber: ref.Number, CreatedAt: time.Now()})
		}
	}

	return target, nil
}
