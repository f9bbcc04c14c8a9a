package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type recordingGateway struct {
	mu       sync.Mutex
	sent     []string
	failWith map[string]error
}

func (g *recordingGateway) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, token)
	if err, ok := g.failWith[token]; ok {
		return err
	}
	return nil
}

func TestFanOut_AllDelivered(t *testing.T) {
	gw := &recordingGateway{}
	msgs := []Message{
		{Token: "t1", Title: "a"},
		{Token: "t2", Title: "b"},
		{Token: "t3", Title: "c"},
	}

	delivered := FanOut(context.Background(), gw, msgs)

	if delivered != 3 {
		t.Fatalf("expected 3 delivered, got %d", delivered)
	}
	if len(gw.sent) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(gw.sent))
	}
}

func TestFanOut_FailureDoesNotAbortBatch(t *testing.T) {
	gw := &recordingGateway{failWith: map[string]error{"t2": ErrDelivery}}
	msgs := []Message{
		{Token: "t1"},
		{Token: "t2"},
		{Token: "t3"},
	}

	delivered := FanOut(context.Background(), gw, msgs)

	if delivered != 2 {
		t.Fatalf("expected 2 delivered, got %d", delivered)
	}
	if len(gw.sent) != 3 {
		t.Fatalf("every recipient must be attempted, got %d attempts", len(gw.sent))
	}
}

func TestFanOut_AllFailing(t *testing.T) {
	gw := &recordingGateway{failWith: map[string]error{
		"t1": errors.New("boom"),
		"t2": errors.New("boom"),
	}}
	delivered := FanOut(context.Background(), gw, []Message{{Token: "t1"}, {Token: "t2"}})
	if delivered != 0 {
		t.Fatalf("expected 0 delivered, got %d", delivered)
	}
}

func TestFanOut_Empty(t *testing.T) {
	if got := FanOut(context.Background(), &recordingGateway{}, nil); got != 0 {
		t.Fatalf("expected 0 for empty batch, got %d", got)
	}
}
