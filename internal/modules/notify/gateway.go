// README: Push-notification gateway interface and its FCM implementation.
package notify

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// ErrDelivery wraps transport failures. Callers log it per recipient and
// never surface it to the request that triggered the send.
var ErrDelivery = errors.New("notification delivery failed")

// Gateway sends one push message to one device token. At-most-once,
// best-effort; no retries.
type Gateway interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// FCMGateway delivers via Firebase Cloud Messaging.
type FCMGateway struct {
	client *messaging.Client
}

func NewFCMGateway(client *messaging.Client) *FCMGateway {
	return &FCMGateway{client: client}
}

func (g *FCMGateway) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("%w: empty device token", ErrDelivery)
	}
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}
	if _, err := g.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}
