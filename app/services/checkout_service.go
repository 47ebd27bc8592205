package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhonlemus05/FastBite-Delivery/app/client"
	"github.com/jhonlemus05/FastBite-Delivery/app/models"
	"github.com/jhonlemus05/FastBite-Delivery/app/store"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/cache"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/event"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/metrics"
)

var (
	ErrEmptyCart          = errors.New("checkout: cart is empty")
	ErrCheckoutInProgress = errors.New("checkout: another submission is in progress")
	ErrDuplicateSubmit    = errors.New("checkout: form already submitted")
)

// CheckoutRequest is one submission of the cart form.
type CheckoutRequest struct {
	SessionID       string
	Token           string
	CustomerName    string
	CustomerAddress string
}

// OrderFailure is the payload of order.failed events.
type OrderFailure struct {
	Total float64
	Err   error
}

// CheckoutService turns a cart into a backend order exactly once.
//
// A lock keyed by session stops concurrent submissions, and each rendered
// cart form carries a one-shot token that is burned in the shared cache, so a
// replayed form cannot create a second order even from a stale session copy.
type CheckoutService struct {
	api      client.Backend
	locks    cache.Cache
	lockTTL  time.Duration
	tokenTTL time.Duration
	events   *event.Bus
}

func NewCheckoutService(api client.Backend, locks cache.Cache, lockTTL, tokenTTL time.Duration, events *event.Bus) *CheckoutService {
	return &CheckoutService{api: api, locks: locks, lockTTL: lockTTL, tokenTTL: tokenTTL, events: events}
}

// IssueToken creates the token embedded in the next checkout form.
func (s *CheckoutService) IssueToken(st *store.Store) string {
	tok := uuid.NewString()
	st.IssueCheckoutToken(tok)
	return tok
}

// PlaceOrder submits the cart. The cart is cleared only after the backend
// accepted the order.
func (s *CheckoutService) PlaceOrder(ctx context.Context, st *store.Store, req CheckoutRequest) (models.Order, error) {
	log := logger.WithCtx(ctx)

	items := st.Cart()
	if len(items) == 0 {
		return models.Order{}, rejected(ErrEmptyCart)
	}

	lockKey := "fastbite:checkout:lock:" + req.SessionID
	ok, err := s.locks.SetNX(ctx, lockKey, time.Now().Unix(), s.lockTTL)
	if err != nil {
		return models.Order{}, fmt.Errorf("checkout: acquire lock: %w", err)
	}
	if !ok {
		return models.Order{}, rejected(ErrCheckoutInProgress)
	}
	defer func() {
		if err := s.locks.Del(context.WithoutCancel(ctx), lockKey); err != nil {
			log.Warn("checkout lock release failed", "error", err)
		}
	}()

	if !st.ConsumeCheckoutToken(req.Token) {
		return models.Order{}, rejected(ErrDuplicateSubmit)
	}
	fresh, err := s.locks.SetNX(ctx, "fastbite:checkout:token:"+req.Token, req.SessionID, s.tokenTTL)
	if err != nil {
		return models.Order{}, fmt.Errorf("checkout: burn token: %w", err)
	}
	if !fresh {
		return models.Order{}, rejected(ErrDuplicateSubmit)
	}

	draft := models.OrderDraft{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		Items:           items,
		Total:           st.CartTotal(),
	}

	order, err := s.api.WithToken(st.Token()).CreateOrder(ctx, draft)
	if err != nil {
		s.events.Fire(event.OrderFailed, OrderFailure{Total: draft.Total, Err: err})
		return models.Order{}, err
	}

	st.ClearCart()
	s.events.Fire(event.OrderPlaced, order)
	log.Info("order placed", "order_id", order.ID, "items", len(items), "total", draft.Total)
	return order, nil
}

func rejected(err error) error {
	metrics.OrdersPlaced.WithLabelValues("rejected").Inc()
	return err
}
