// README: Customer support assistant backed by Gemini. Answers questions
// about the user's recent orders; never mutates anything.
package support

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"homecall/internal/modules/order"
	"homecall/internal/types"
)

type OrderSource interface {
	ListByUser(ctx context.Context, userID types.ID) ([]*order.Order, error)
}

// Assistant wraps a Gemini model with the user's recent order context.
type Assistant struct {
	client *genai.Client
	model  *genai.GenerativeModel
	orders OrderSource
}

func NewAssistant(ctx context.Context, apiKey string, orders OrderSource) (*Assistant, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	// Gemini 2.0 Flash keeps support replies fast and cheap.
	model := client.GenerativeModel("gemini-2.0-flash")
	model.SetTemperature(0.4)

	return &Assistant{client: client, model: model, orders: orders}, nil
}

func (a *Assistant) Close() {
	a.client.Close()
}

// Chat answers one support message. The user's recent orders are injected
// into the prompt so the model can reference real bookings.
func (a *Assistant) Chat(ctx context.Context, userID types.ID, message string) (string, error) {
	if userID == "" || strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("userID and message are required")
	}

	orders, err := a.orders.ListByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("loading orders for support context: %w", err)
	}

	prompt := buildSupportPrompt(orders, message)
	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates from Gemini")
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			reply.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(reply.String()), nil
}

func buildSupportPrompt(orders []*order.Order, message string) string {
	var ctxInfo strings.Builder
	if len(orders) == 0 {
		ctxInfo.WriteString("The user has no orders on record.\n")
	}
	for i, o := range orders {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&ctxInfo, "- Order %s placed %s with %d item(s)\n",
			o.ID, o.CreatedAt.Format(time.RFC1123), len(o.Items))
	}

	return fmt.Sprintf(`Role: You are the support assistant for "HomeCall", a home-services booking app.
You help customers with questions about their bookings, scheduling, and how the app works.

User's recent orders:
%s
RULES:
- Answer in short, friendly plain text. No markdown.
- Only reference orders listed above; never invent order details.
- You cannot cancel, modify, or refund orders. For those, direct the user to
  the order screen in the app or to human support.
- If the question is unrelated to home services, politely steer back.

User Message: %s`, ctxInfo.String(), message)
}
