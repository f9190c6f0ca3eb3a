package engine

import (
	"sync"
	"time"
)

// How long a confirmation stays visible, plus the tail clients get to
// finish their exit animation before the slot is considered free.
const (
	ConfirmationVisible  = 2500 * time.Millisecond
	ConfirmationExitTail = 300 * time.Millisecond
	ConfirmationLifetime = ConfirmationVisible + ConfirmationExitTail
)

// ConfirmationPresenter holds at most one visible confirmation at a
// time. Showing a new event supersedes the current one and cancels its
// pending dismissal, so there is never more than one pending timer and
// the completion callback fires at most once per shown event.
type ConfirmationPresenter struct {
	mu        sync.Mutex
	lifetime  time.Duration
	onDismiss func(ConfirmationEvent)
	current   *ConfirmationEvent
	timer     *time.Timer
	seq       uint64
}

// NewConfirmationPresenter creates a presenter whose events expire after
// lifetime. A non-positive lifetime falls back to ConfirmationLifetime.
// onDismiss may be nil; it is invoked only when an event expires
// naturally, never for superseded or manually dismissed ones.
func NewConfirmationPresenter(lifetime time.Duration, onDismiss func(ConfirmationEvent)) *ConfirmationPresenter {
	if lifetime <= 0 {
		lifetime = ConfirmationLifetime
	}
	return &ConfirmationPresenter{lifetime: lifetime, onDismiss: onDismiss}
}

// Show makes ev the visible confirmation, cancelling any pending
// dismissal first (last write wins).
func (p *ConfirmationPresenter) Show(ev ConfirmationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}

	p.seq++
	seq := p.seq
	held := ev
	p.current = &held
	p.timer = time.AfterFunc(p.lifetime, func() { p.expire(seq) })
}

func (p *ConfirmationPresenter) expire(seq uint64) {
	p.mu.Lock()
	// A stale sequence means this timer was superseded or dismissed
	// after it fired but before it acquired the lock.
	if seq != p.seq || p.current == nil {
		p.mu.Unlock()
		return
	}
	ev := *p.current
	p.current = nil
	p.timer = nil
	cb := p.onDismiss
	p.mu.Unlock()

	if cb != nil {
		cb(ev)
	}
}

// Current returns the visible confirmation, if any.
func (p *ConfirmationPresenter) Current() (ConfirmationEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return ConfirmationEvent{}, false
	}
	return *p.current, true
}

// Dismiss clears the visible confirmation and cancels its pending
// dismissal without invoking the completion callback.
func (p *ConfirmationPresenter) Dismiss() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.current = nil
	p.seq++
}
