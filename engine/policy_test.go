package engine

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestCanAcceptNewOrderWhenOpen(t *testing.T) {
	p := Policy{MaxOrdersPerHour: intPtr(5)}

	d := p.CanAcceptNewOrder(4, time.Now(), true)
	if !d.Accepted {
		t.Fatalf("expected acceptance under the cap, got reason %q", d.Reason)
	}
	if d.Reason != "" {
		t.Errorf("accepted decision must carry no reason, got %q", d.Reason)
	}
}

func TestCanAcceptNewOrderRejectsWhenClosed(t *testing.T) {
	p := Policy{}

	d := p.CanAcceptNewOrder(0, time.Now(), false)
	if d.Accepted {
		t.Fatal("expected rejection while closed")
	}
	if d.Reason != ReasonBusinessClosed {
		t.Errorf("expected reason %q, got %q", ReasonBusinessClosed, d.Reason)
	}
}

func TestCanAcceptNewOrderRejectsAtCap(t *testing.T) {
	p := Policy{MaxOrdersPerHour: intPtr(5)}

	d := p.CanAcceptNewOrder(5, time.Now(), true)
	if d.Accepted {
		t.Fatal("expected rejection at the hourly cap")
	}
	if d.Reason != ReasonThroughputExceeded {
		t.Errorf("expected reason %q, got %q", ReasonThroughputExceeded, d.Reason)
	}
}

func TestCanAcceptNewOrderClosedTakesPrecedence(t *testing.T) {
	p := Policy{MaxOrdersPerHour: intPtr(1)}

	// Both rules would reject; the closed check runs first.
	d := p.CanAcceptNewOrder(10, time.Now(), false)
	if d.Reason != ReasonBusinessClosed {
		t.Errorf("closed must win over throughput, got reason %q", d.Reason)
	}
}

func TestCanAcceptNewOrderUnlimitedWithoutCap(t *testing.T) {
	p := Policy{}

	d := p.CanAcceptNewOrder(10000, time.Now(), true)
	if !d.Accepted {
		t.Errorf("nil cap means unlimited throughput, got reason %q", d.Reason)
	}
}

func TestQuoteReadyMinutes(t *testing.T) {
	p := Policy{PrepBufferMinutes: 10}
	if got := p.QuoteReadyMinutes(20); got != 30 {
		t.Errorf("expected 20+10=30 minutes, got %d", got)
	}

	zero := Policy{}
	if got := zero.QuoteReadyMinutes(20); got != 20 {
		t.Errorf("zero buffer must leave the base untouched, got %d", got)
	}
}

func TestPolicyValidate(t *testing.T) {
	if err := (Policy{PrepBufferMinutes: -1}).Validate(); err == nil {
		t.Error("expected error for negative prep buffer")
	}
	if err := (Policy{MaxOrdersPerHour: intPtr(0)}).Validate(); err == nil {
		t.Error("expected error for zero hourly cap")
	}
	if err := (Policy{MaxOrdersPerHour: intPtr(-3)}).Validate(); err == nil {
		t.Error("expected error for negative hourly cap")
	}
	if err := (Policy{PrepBufferMinutes: 15, MaxOrdersPerHour: intPtr(8)}).Validate(); err != nil {
		t.Errorf("expected valid policy to pass, got %v", err)
	}
	if err := (Policy{}).Validate(); err != nil {
		t.Errorf("zero-value policy must be valid, got %v", err)
	}
}
