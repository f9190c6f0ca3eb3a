package notify

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"tiendita-backend/engine"
)

func TestLogDispatcherImplementsDispatcher(t *testing.T) {
	var d engine.Dispatcher = LogDispatcher{}

	// Must not panic or block.
	d.Dispatch(engine.StatusNotification{
		OrderID:     uuid.New(),
		OrderNumber: "ORD-TEST",
		Status:      engine.StatusAccepted,
	})
}

func TestNewDispatcherFallsBackWithoutCredentials(t *testing.T) {
	os.Unsetenv("GOOGLE_APPLICATION_CREDENTIALS")

	d := NewDispatcher(context.Background())
	if _, ok := d.(LogDispatcher); !ok {
		t.Fatalf("expected LogDispatcher fallback, got %T", d)
	}
}

func TestNewDispatcherFallsBackOnBadCredentials(t *testing.T) {
	os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "{not-valid-json")
	defer os.Unsetenv("GOOGLE_APPLICATION_CREDENTIALS")

	// Broken credentials must degrade to the log fallback, not fail.
	d := NewDispatcher(context.Background())
	if _, ok := d.(LogDispatcher); !ok {
		t.Fatalf("expected LogDispatcher fallback, got %T", d)
	}
}
