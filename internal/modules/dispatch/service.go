// README: Dispatch coordinator: persist the order, find eligible providers
// within the service radius, fan out the offer.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"homecall/internal/modules/address"
	"homecall/internal/modules/geo"
	"homecall/internal/modules/notify"
	"homecall/internal/modules/order"
	"homecall/internal/types"
)

// ValidationError lists the request fields that were missing or malformed.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing fields: %s", strings.Join(e.Missing, ", "))
}

type GeoIndex interface {
	Nearby(ctx context.Context, p types.Point, radiusMeters float64) ([]geo.Candidate, error)
}

type CapabilityMatcher interface {
	Matches(ctx context.Context, providerID types.ID, categoryIDs, subCategoryIDs []types.ID) (bool, error)
}

type AddressResolver interface {
	Resolve(ctx context.Context, addressID types.ID) (types.Point, error)
}

type OrderSink interface {
	Create(ctx context.Context, o *order.Order) error
}

type TokenSource interface {
	Get(ctx context.Context, ownerID types.ID) (string, bool, error)
}

// Log records per-order dispatch bookkeeping; Store is the Redis
// implementation.
type Log interface {
	RecordDispatch(ctx context.Context, orderID types.ID, providerIDs []types.ID) error
}

type Service struct {
	orders       OrderSink
	addresses    AddressResolver
	index        GeoIndex
	capabilities CapabilityMatcher
	tokens       TokenSource
	log          Log
	gateway      notify.Gateway
	radiusMeters float64
}

func NewService(orders OrderSink, addresses AddressResolver, index GeoIndex, capabilities CapabilityMatcher, tokens TokenSource, dispatchLog Log, gateway notify.Gateway, radiusMeters float64) *Service {
	return &Service{
		orders:       orders,
		addresses:    addresses,
		index:        index,
		capabilities: capabilities,
		tokens:       tokens,
		log:          dispatchLog,
		gateway:      gateway,
		radiusMeters: radiusMeters,
	}
}

type CreateOrderCommand struct {
	UserID         types.ID
	AddressID      types.ID
	PaymentID      string
	CategoryIDs    []types.ID
	SubCategoryIDs []types.ID
	Items          []order.Item
}

func (c CreateOrderCommand) validate() error {
	var missing []string
	if c.UserID == "" {
		missing = append(missing, "userId")
	}
	if c.AddressID == "" {
		missing = append(missing, "addressId")
	}
	if len(c.CategoryIDs) == 0 {
		missing = append(missing, "categoryIds")
	}
	if len(c.SubCategoryIDs) == 0 {
		missing = append(missing, "subCategoryIds")
	}
	if len(c.Items) == 0 {
		missing = append(missing, "items")
	}
	for i, it := range c.Items {
		if it.ServiceID == "" || it.Quantity <= 0 {
			missing = append(missing, fmt.Sprintf("items[%d]", i))
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// CreateOrder persists the order, then offers it to every provider inside the
// service radius with a matching capability and a registered device token.
// The order is durable before any notification leaves the building, and no
// notification failure ever fails the request.
func (s *Service) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*order.Order, int, error) {
	if err := cmd.validate(); err != nil {
		return nil, 0, err
	}

	origin, err := s.addresses.Resolve(ctx, cmd.AddressID)
	if errors.Is(err, address.ErrNotFound) {
		return nil, 0, err
	}
	if err != nil {
		return nil, 0, fmt.Errorf("resolving address %s: %w", cmd.AddressID, err)
	}

	o := &order.Order{
		ID:             newOrderID(),
		UserID:         cmd.UserID,
		AddressID:      cmd.AddressID,
		PaymentID:      cmd.PaymentID,
		CategoryIDs:    cmd.CategoryIDs,
		SubCategoryIDs: cmd.SubCategoryIDs,
		Items:          cmd.Items,
		CreatedAt:      time.Now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, 0, fmt.Errorf("persisting order: %w", err)
	}

	notified := s.offer(ctx, o, origin)
	return o, notified, nil
}

// offer runs the geo -> capability -> token filter chain and fans out the
// "New Order!" push. Returns how many providers were offered the order.
func (s *Service) offer(ctx context.Context, o *order.Order, origin types.Point) int {
	candidates, err := s.index.Nearby(ctx, origin, s.radiusMeters)
	if err != nil {
		log.Printf("dispatch: geo search for order %s: %v", o.ID, err)
		return 0
	}

	// Providers get the full order payload so the app can render the bid
	// screen without a follow-up fetch.
	payload := orderPayload(o)

	var offered []types.ID
	var msgs []notify.Message
	for _, c := range candidates {
		ok, err := s.capabilities.Matches(ctx, c.ProviderID, o.CategoryIDs, o.SubCategoryIDs)
		if err != nil {
			log.Printf("dispatch: capability check for provider %s: %v", c.ProviderID, err)
			continue
		}
		if !ok {
			continue
		}
		tok, ok, err := s.tokens.Get(ctx, c.ProviderID)
		if err != nil || !ok {
			continue
		}
		offered = append(offered, c.ProviderID)
		msgs = append(msgs, notify.Message{
			Token: tok,
			Title: "New Order!",
			Body:  "A new order is available near you.",
			Data: map[string]string{
				"orderId":        string(o.ID),
				"order":          payload,
				"distanceMeters": fmt.Sprintf("%.0f", c.DistanceMeters),
			},
		})
	}

	if err := s.log.RecordDispatch(ctx, o.ID, offered); err != nil {
		log.Printf("dispatch: recording dispatch for order %s: %v", o.ID, err)
	}

	if tok, ok, err := s.tokens.Get(ctx, o.UserID); err == nil && ok {
		msgs = append(msgs, notify.Message{
			Token: tok,
			Title: "Order Created",
			Body:  "We are finding a provider for your order.",
			Data:  map[string]string{"orderId": string(o.ID)},
		})
	}

	if s.gateway != nil {
		notify.FanOut(ctx, s.gateway, msgs)
	}
	return len(offered)
}

func orderPayload(o *order.Order) string {
	items := make([]map[string]any, len(o.Items))
	for i, it := range o.Items {
		items[i] = map[string]any{
			"serviceId":     it.ServiceID,
			"categoryId":    it.CategoryID,
			"subCategoryId": it.SubcategoryID,
			"quantity":      it.Quantity,
			"scheduledDate": it.ScheduledDate,
			"scheduledTime": it.ScheduledTime,
		}
	}
	b, err := json.Marshal(map[string]any{
		"id":             o.ID,
		"userId":         o.UserID,
		"addressId":      o.AddressID,
		"categoryIds":    o.CategoryIDs,
		"subCategoryIds": o.SubCategoryIDs,
		"items":          items,
	})
	if err != nil {
		return ""
	}
	return string(b)
}
