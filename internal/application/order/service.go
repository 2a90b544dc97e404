// Package order implements the admin order operations: listing, status
// changes and shipping.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/MuratKus/burbarshop/internal/domain/shared"
	"go.uber.org/zap"
)

// Notifier tells a customer that their order has shipped
type Notifier interface {
	NotifyShipped(ctx context.Context, o *order.Order) error
}

// ShipOutcome reports a shipped order and whether the customer was emailed.
// A failed email does not fail the shipment.
type ShipOutcome struct {
	Order      *order.Order
	EmailSent  bool
	EmailError string
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service handles admin order operations
type Service struct {
	repo     order.OrderRepository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new order Service
func NewService(repo order.OrderRepository, notifier Notifier, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListRecent returns up to limit orders newest first, optionally filtered by status
func (s *Service) ListRecent(ctx context.Context, status *order.OrderStatus, limit int) ([]order.Order, error) {
	if status != nil && !status.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_STATUS", "Invalid order status: %s", *status)
	}
	return s.repo.FindRecent(ctx, order.OrderFilter{Status: status, Limit: limit})
}

// Resolve finds the order a reference points to. A reference is a full order
// id, matched exactly, or a short id, matched as a case-insensitive suffix.
// A suffix shared by several orders is an ambiguity error, never a guess.
func (s *Service) Resolve(ctx context.Context, ref string) (*order.Order, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if ref == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order id is required")
	}
	display := "#" + strings.ToUpper(ref)

	o, err := s.repo.FindByID(ctx, ref)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	matches, err := s.repo.FindByIDSuffix(ctx, ref, 0)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, shared.NewDomainErrorf("NOT_FOUND", "Order %s not found.", display)
	case 1:
		return &matches[0], nil
	default:
		return nil, shared.NewDomainErrorf("AMBIGUOUS",
			"Order %s matches %d orders; use the full order id.", display, len(matches))
	}
}

// UpdateStatus overwrites the status of the referenced order. Repeating an
// update leaves the order unchanged apart from its update time.
func (s *Service) UpdateStatus(ctx context.Context, ref string, status order.OrderStatus) (*order.Order, error) {
	o, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := o.ChangeStatus(status, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order %s: %w", o.ID, err)
	}
	s.logger.Info("Order status updated",
		zap.String("order_id", o.ID),
		zap.String("status", status.String()))
	return o, nil
}

// Ship marks the referenced order shipped and emails the customer. The order
// is saved before the email is attempted; an unresolved order never triggers
// an email.
func (s *Service) Ship(ctx context.Context, ref, trackingNumber string) (*ShipOutcome, error) {
	o, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := o.MarkShipped(trackingNumber, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order %s: %w", o.ID, err)
	}

	outcome := &ShipOutcome{Order: o}
	if s.notifier == nil {
		outcome.EmailError = "no email notifier configured"
		return outcome, nil
	}
	if err := s.notifier.NotifyShipped(ctx, o); err != nil {
		s.logger.Warn("Shipping notification failed",
			zap.String("order_id", o.ID),
			zap.Error(err))
		outcome.EmailError = err.Error()
		return outcome, nil
	}
	outcome.EmailSent = true
	s.logger.Info("Order shipped",
		zap.String("order_id", o.ID),
		zap.String("tracking_number", o.TrackingNumber))
	return outcome, nil
}
