package notify

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"tiendita-backend/engine"
)

// LogDispatcher writes status notifications to the application log. It
// is the fallback when no push credentials are configured.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(n engine.StatusNotification) {
	log.Printf("order %s (%s) is now %s", n.OrderNumber, n.OrderID, n.Status)
}

// FCMDispatcher pushes status notifications to the customer app over
// Firebase Cloud Messaging. Sends happen on their own goroutine so the
// order flow never waits on the network.
type FCMDispatcher struct {
	client *messaging.Client
}

func NewFCMDispatcher(ctx context.Context) (*FCMDispatcher, error) {
	credJSON := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")

	var opts []option.ClientOption
	if credJSON != "" {
		if strings.HasPrefix(credJSON, "{") {
			log.Println("Using Firebase credentials from environment variable")
			opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
		} else {
			// It's a file path
			log.Println("Using Firebase credentials from file:", credJSON)
			opts = append(opts, option.WithCredentialsFile(credJSON))
		}
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init failed: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("messaging client init failed: %w", err)
	}

	return &FCMDispatcher{client: client}, nil
}

func (d *FCMDispatcher) Dispatch(n engine.StatusNotification) {
	msg := &messaging.Message{
		Topic: "orders-" + n.OrderID.String(),
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("Order %s", n.OrderNumber),
			Body:  fmt.Sprintf("Your order is now %s", n.Status),
		},
		Data: map[string]string{
			"order_id":      n.OrderID.String(),
			"order_number":  n.OrderNumber,
			"customer_name": n.CustomerName,
			"status":        string(n.Status),
		},
	}

	go func() {
		if _, err := d.client.Send(context.Background(), msg); err != nil {
			log.Printf("Failed to push status for order %s: %v", n.OrderNumber, err)
		}
	}()
}

// NewDispatcher picks FCM when credentials are configured, otherwise
// the log fallback. Startup never fails over a missing push channel.
func NewDispatcher(ctx context.Context) engine.Dispatcher {
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		log.Println("Push notifications disabled, dispatching to log only")
		return LogDispatcher{}
	}

	d, err := NewFCMDispatcher(ctx)
	if err != nil {
		log.Printf("FCM unavailable (%v), dispatching to log only", err)
		return LogDispatcher{}
	}

	log.Println("FCM dispatcher initialized")
	return d
}
