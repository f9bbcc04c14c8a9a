// README: Order lifecycle service: OTP-gated state transitions, accept
// conflict guard, notification side effects.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"homecall/internal/modules/notify"
	"homecall/internal/modules/order"
	"homecall/internal/modules/provider"
	"homecall/internal/types"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("order history not found")
	ErrInvalidOTP   = errors.New("invalid otp")
	ErrExpiredOTP   = errors.New("otp has expired")
	ErrInvalidState = errors.New("invalid state transition")
	ErrConflict     = errors.New("order already taken")
)

// Store is the persistence contract for engagement rows. The production
// implementation is PGStore.
type Store interface {
	// Insert persists a new engagement. It fails with ErrConflict when the
	// order already has a non-terminal engagement.
	Insert(ctx context.Context, h *History) error
	Get(ctx context.Context, id types.ID) (*History, error)
	GetForProvider(ctx context.Context, id, providerID types.ID) (*History, error)
	// UpdateStatus is a compare-and-swap on the current status.
	UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error)
	SetOTP(ctx context.Context, id types.ID, code string, expiry time.Time) error
	// TransitionClearOTP transitions and wipes the OTP pair in one write so a
	// verified code can never be replayed.
	TransitionClearOTP(ctx context.Context, id types.ID, from, to Status) (bool, error)
	// Cancel transitions to Cancelled iff the row is still cancellable, and
	// records the reason.
	Cancel(ctx context.Context, id types.ID, reason string) (bool, error)
	SetImage(ctx context.Context, id types.ID, key string) error
	ListByProvider(ctx context.Context, providerID types.ID) ([]*History, error)
	ListByOrders(ctx context.Context, orderIDs []types.ID) ([]*History, error)
	ListStaleAccepted(ctx context.Context, now time.Time) ([]*History, error)
}

type OrderSource interface {
	GetByID(ctx context.Context, id types.ID) (*order.Order, error)
	ListByUser(ctx context.Context, userID types.ID) ([]*order.Order, error)
}

type ProfileSource interface {
	Get(ctx context.Context, providerID types.ID) (*provider.Profile, error)
}

type TokenSource interface {
	Get(ctx context.Context, ownerID types.ID) (string, bool, error)
}

// DispatchLog exposes the bookkeeping recorded at dispatch time: which
// providers were offered the order, and whether the offer window is closed.
type DispatchLog interface {
	NotifiedProviders(ctx context.Context, orderID types.ID) ([]types.ID, error)
	Close(ctx context.Context, orderID types.ID) error
	IsClosed(ctx context.Context, orderID types.ID) (bool, error)
}

type ImageUploader interface {
	Upload(ctx context.Context, r io.Reader, filename string) (string, error)
}

type Service struct {
	store    Store
	orders   OrderSource
	profiles ProfileSource
	tokens   TokenSource
	dispatch DispatchLog
	gateway  notify.Gateway
	images   ImageUploader
}

func NewService(store Store, orders OrderSource, profiles ProfileSource, tokens TokenSource, dispatch DispatchLog, gateway notify.Gateway, images ImageUploader) *Service {
	return &Service{
		store:    store,
		orders:   orders,
		profiles: profiles,
		tokens:   tokens,
		dispatch: dispatch,
		gateway:  gateway,
		images:   images,
	}
}

type AcceptCommand struct {
	OrderID    types.ID
	ProviderID types.ID
}

type VerifyStartCommand struct {
	HistoryID types.ID
	OTP       string
}

type GenerateCompletionCommand struct {
	HistoryID  types.ID
	ProviderID types.ID
}

type VerifyCompleteCommand struct {
	HistoryID  types.ID
	ProviderID types.ID
	OTP        string
}

type PayCommand struct {
	HistoryID  types.ID
	ProviderID types.ID
}

type CancelCommand struct {
	HistoryID  types.ID
	ProviderID types.ID
	Reason     string
}

type AttachImageCommand struct {
	HistoryID  types.ID
	ProviderID types.ID
	File       io.Reader
	Filename   string
}

// Accept claims the order for the provider. First accept wins: the insert is
// guarded so a second concurrent accept, or an accept after the offer window
// closed, fails with ErrConflict. The engagement starts in Accepted with a
// fresh start OTP.
func (s *Service) Accept(ctx context.Context, cmd AcceptCommand) (*History, error) {
	if cmd.OrderID == "" || cmd.ProviderID == "" {
		return nil, ErrBadRequest
	}
	o, err := s.orders.GetByID(ctx, cmd.OrderID)
	if errors.Is(err, order.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	closed, err := s.dispatch.IsClosed(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if closed {
		return nil, ErrConflict
	}

	code := generateOTP(startOTPDigits)
	expiry := time.Now().Add(startOTPTTL)
	now := time.Now()
	h := &History{
		ID:         newID(),
		OrderID:    cmd.OrderID,
		UserID:     o.UserID,
		ProviderID: cmd.ProviderID,
		Status:     StatusAccepted,
		OTP:        &code,
		OTPExpiry:  &expiry,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Insert(ctx, h); err != nil {
		return nil, err
	}

	// Close the offer window so providers notified "order taken" can never
	// accept later. Best-effort: the unique engagement guard still holds.
	if err := s.dispatch.Close(ctx, cmd.OrderID); err != nil {
		log.Printf("history: closing dispatch for order %s: %v", cmd.OrderID, err)
	}

	s.notifyAccepted(ctx, o, h, code)
	return h, nil
}

// VerifyStart checks the start OTP presented in person by the customer and
// moves the engagement to InProgress.
func (s *Service) VerifyStart(ctx context.Context, cmd VerifyStartCommand) (*History, error) {
	if cmd.HistoryID == "" || cmd.OTP == "" {
		return nil, ErrBadRequest
	}
	h, err := s.store.Get(ctx, cmd.HistoryID)
	if err != nil {
		return nil, err
	}
	if h.OTP == nil || *h.OTP != cmd.OTP {
		return nil, ErrInvalidOTP
	}
	if h.OTPExpiry == nil || time.Now().After(*h.OTPExpiry) {
		return nil, ErrExpiredOTP
	}
	if h.Status != StatusAccepted {
		return nil, ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, h.ID, StatusAccepted, StatusInProgress)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	h.Status = StatusInProgress
	return h, nil
}

// GenerateCompletion issues a fresh completion OTP, overwriting any previous
// one. Status is untouched.
func (s *Service) GenerateCompletion(ctx context.Context, cmd GenerateCompletionCommand) (string, error) {
	if cmd.HistoryID == "" || cmd.ProviderID == "" {
		return "", ErrBadRequest
	}
	h, err := s.store.GetForProvider(ctx, cmd.HistoryID, cmd.ProviderID)
	if err != nil {
		return "", err
	}
	code := generateOTP(completionOTPDigits)
	if err := s.store.SetOTP(ctx, h.ID, code, time.Now().Add(completionOTPTTL)); err != nil {
		return "", err
	}
	return code, nil
}

// VerifyComplete checks the completion OTP, transitions to Completed, and
// clears the OTP pair so the code cannot be replayed.
func (s *Service) VerifyComplete(ctx context.Context, cmd VerifyCompleteCommand) (*History, error) {
	if cmd.HistoryID == "" || cmd.ProviderID == "" || cmd.OTP == "" {
		return nil, ErrBadRequest
	}
	h, err := s.store.GetForProvider(ctx, cmd.HistoryID, cmd.ProviderID)
	if err != nil {
		return nil, err
	}
	if h.OTP == nil || *h.OTP != cmd.OTP {
		return nil, ErrInvalidOTP
	}
	if h.OTPExpiry == nil || time.Now().After(*h.OTPExpiry) {
		return nil, ErrExpiredOTP
	}
	if !CanTransition(h.Status, StatusCompleted) {
		return nil, ErrInvalidState
	}
	ok, err := s.store.TransitionClearOTP(ctx, h.ID, h.Status, StatusCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	h.Status = StatusCompleted
	h.OTP = nil
	h.OTPExpiry = nil
	return h, nil
}

// Pay marks the engagement paid. Reached only via the trusted internal route
// (payment webhook); still requires the engagement to be Completed so the
// lifecycle never moves backwards.
func (s *Service) Pay(ctx context.Context, cmd PayCommand) (*History, error) {
	if cmd.HistoryID == "" || cmd.ProviderID == "" {
		return nil, ErrBadRequest
	}
	h, err := s.store.GetForProvider(ctx, cmd.HistoryID, cmd.ProviderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(h.Status, StatusPaid) {
		return nil, ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, h.ID, h.Status, StatusPaid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	h.Status = StatusPaid
	return h, nil
}

// Cancel transitions to Cancelled and records the reason verbatim.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*History, error) {
	if cmd.HistoryID == "" || cmd.ProviderID == "" {
		return nil, ErrBadRequest
	}
	h, err := s.store.GetForProvider(ctx, cmd.HistoryID, cmd.ProviderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(h.Status, StatusCancelled) {
		return nil, ErrInvalidState
	}
	ok, err := s.store.Cancel(ctx, h.ID, cmd.Reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	h.Status = StatusCancelled
	h.Reason = &cmd.Reason
	return h, nil
}

// AttachImage stores a proof-of-work photo against the engagement and records
// the object key. Status is untouched.
func (s *Service) AttachImage(ctx context.Context, cmd AttachImageCommand) (string, error) {
	if cmd.HistoryID == "" || cmd.ProviderID == "" || cmd.File == nil {
		return "", ErrBadRequest
	}
	if s.images == nil {
		return "", errors.New("image storage not configured")
	}
	h, err := s.store.GetForProvider(ctx, cmd.HistoryID, cmd.ProviderID)
	if err != nil {
		return "", err
	}
	key, err := s.images.Upload(ctx, cmd.File, cmd.Filename)
	if err != nil {
		return "", err
	}
	if err := s.store.SetImage(ctx, h.ID, key); err != nil {
		return "", err
	}
	return key, nil
}

// ProviderEntry is a history row joined with its order for provider-facing
// listings.
type ProviderEntry struct {
	History *History
	Order   *order.Order
}

func (s *Service) ListByProvider(ctx context.Context, providerID types.ID) ([]ProviderEntry, error) {
	if providerID == "" {
		return nil, ErrBadRequest
	}
	rows, err := s.store.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	out := make([]ProviderEntry, 0, len(rows))
	for _, h := range rows {
		e := ProviderEntry{History: h}
		if o, err := s.orders.GetByID(ctx, h.OrderID); err == nil {
			e.Order = o
		}
		out = append(out, e)
	}
	return out, nil
}

// UserEntry is a history row joined with the engaged provider's profile for
// customer-facing listings.
type UserEntry struct {
	History  *History
	Provider *provider.Profile
}

func (s *Service) ListByUser(ctx context.Context, userID types.ID) ([]UserEntry, error) {
	if userID == "" {
		return nil, ErrBadRequest
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	rows, err := s.store.ListByOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]UserEntry, 0, len(rows))
	for _, h := range rows {
		e := UserEntry{History: h}
		if p, err := s.profiles.Get(ctx, h.ProviderID); err == nil {
			e.Provider = p
		}
		out = append(out, e)
	}
	return out, nil
}

// RunExpirySweeper cancels engagements stuck in Accepted after their start
// OTP lapsed, so abandoned accepts do not hold orders hostage forever.
func (s *Service) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stale, err := s.store.ListStaleAccepted(ctx, time.Now())
			if err != nil {
				log.Printf("history: expiry sweep query: %v", err)
				continue
			}
			for _, h := range stale {
				ok, err := s.store.Cancel(ctx, h.ID, "start_otp_expired")
				if err != nil {
					log.Printf("history: expiry sweep cancel %s: %v", h.ID, err)
					continue
				}
				if ok {
					log.Printf("history: auto-cancelled stale engagement %s (order %s)", h.ID, h.OrderID)
				}
			}
		}
	}
}

// notifyAccepted fans out the accept-time notifications: the customer gets
// the provider's contact details plus the start OTP, the winning provider a
// confirmation, and every other offered provider an "order taken" notice.
// All best-effort; a delivery failure never fails the accept.
func (s *Service) notifyAccepted(ctx context.Context, o *order.Order, h *History, code string) {
	if s.gateway == nil {
		return
	}
	var msgs []notify.Message

	if tok, ok, err := s.tokens.Get(ctx, o.UserID); err == nil && ok {
		data := map[string]string{
			"orderHistoryId": string(h.ID),
			"otp":            code,
		}
		if p, err := s.profiles.Get(ctx, h.ProviderID); err == nil {
			if b, err := json.Marshal(map[string]string{"name": p.Name, "phone": p.Phone}); err == nil {
				data["providerDetails"] = string(b)
			}
		}
		msgs = append(msgs, notify.Message{
			Token: tok,
			Title: "Order Accepted",
			Body:  "Your order has been accepted. The provider is on the way.",
			Data:  data,
		})
	}

	if tok, ok, err := s.tokens.Get(ctx, h.ProviderID); err == nil && ok {
		msgs = append(msgs, notify.Message{
			Token: tok,
			Title: "Order Accepted",
			Body:  "You have accepted the order and are ready to go.",
			Data:  map[string]string{"orderId": string(o.ID)},
		})
	}

	notified, err := s.dispatch.NotifiedProviders(ctx, o.ID)
	if err != nil {
		log.Printf("history: loading dispatch set for order %s: %v", o.ID, err)
	}
	for _, pid := range notified {
		if pid == h.ProviderID {
			continue
		}
		tok, ok, err := s.tokens.Get(ctx, pid)
		if err != nil || !ok {
			continue
		}
		msgs = append(msgs, notify.Message{
			Token: tok,
			Title: "Order Allocation Update",
			Body:  "This order has been allocated to another provider.",
			Data:  map[string]string{"orderId": string(o.ID)},
		})
	}

	notify.FanOut(ctx, s.gateway, msgs)
}
