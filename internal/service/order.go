package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/permissions"
	"github.com/Skotchmaster/storefront/internal/repo"
)

// MaxOrderTotal is the largest total, in minor units, an order may carry.
const MaxOrderTotal = math.MaxInt32

type OrderService struct {
	Repo     *repo.GormRepo
	Charger  Charger
	Events   Publisher
	Currency string
	Now      func() time.Time
}

// CartTotal prices every line from its current item record.
func CartTotal(lines []models.CartItem) int64 {
	var total int64
	for _, line := range lines {
		if line.Item == nil {
			continue
		}
		total += line.Item.Price * int64(line.Quantity)
	}
	return total
}

func (s *OrderService) publish(ctx context.Context, event string, order *models.Order) {
	if s.Events == nil {
		return
	}
	err := s.Events.PublishEvent(ctx, mykafka.TopicOrderEvents, order.UserID, map[string]any{
		"type":     event,
		"orderID":  order.ID,
		"userID":   order.UserID,
		"total":    order.Total,
		"currency": order.Currency,
		"charge":   order.Charge,
		"status":   order.Status,
	})
	if err != nil {
		logging.FromContext(ctx).Error("publish_failed", "topic", mykafka.TopicOrderEvents, "type", event, "error", err)
	}
}

// CreateOrder checks out the caller's cart. A PENDING order is recorded
// before the card is charged; a failed charge removes it and leaves the cart
// alone, and a charge that cannot be finalized is refunded.
func (s *OrderService) CreateOrder(ctx context.Context, caller *models.User, sourceToken string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")
	if caller == nil {
		return nil, ErrNotAuthenticated
	}
	if sourceToken == "" {
		return nil, fmt.Errorf("%w: payment token is required", ErrValidation)
	}

	cart, err := s.Repo.GetCart(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	lines := make([]models.CartItem, 0, len(cart))
	for _, line := range cart {
		if line.Item != nil {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	total := CartTotal(lines)
	if total > MaxOrderTotal {
		l.Warn("create_order_failed", "status", 400, "reason", "total too large", "total", total)
		return nil, fmt.Errorf("%w: order total exceeds %d", ErrValidation, MaxOrderTotal)
	}
	order, err := s.Repo.CreateOrder(ctx, &models.Order{
		UserID:   caller.ID,
		Total:    total,
		Currency: s.Currency,
		Status:   models.OrderStatusPending,
	})
	if err != nil {
		l.Error("create_order_failed", "status", 500, "reason", "cannot persist pending order", "error", err)
		return nil, err
	}

	charge, err := s.Charger.Charge(ctx, payment.ChargeRequest{
		Amount:         total,
		Currency:       s.Currency,
		Source:         sourceToken,
		Description:    fmt.Sprintf("Order of %d items", totalQuantity(lines)),
		IdempotencyKey: order.ID,
		OrderID:        order.ID,
	})
	metrics.ChargesTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		if derr := s.Repo.DeleteOrder(ctx, order.ID); derr != nil {
			l.Error("create_order_cleanup_failed", "order_id", order.ID, "error", derr)
		}
		l.Warn("create_order_failed", "status", 402, "reason", "charge failed", "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if err := s.Repo.SetOrderCharge(ctx, order.ID, charge.ID); err != nil {
		l.Error("record_charge_failed", "order_id", order.ID, "charge", charge.ID, "error", err)
	}

	snapshots := make([]models.OrderItem, 0, len(lines))
	lineIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		snapshots = append(snapshots, models.OrderItem{
			OrderID:     order.ID,
			UserID:      caller.ID,
			Title:       line.Item.Title,
			Description: line.Item.Description,
			Image:       line.Item.Image,
			LargeImage:  line.Item.LargeImage,
			Price:       line.Item.Price,
			Quantity:    line.Quantity,
		})
		lineIDs = append(lineIDs, line.ID)
	}

	final, err := s.Repo.FinalizeOrder(ctx, order.ID, charge.ID, snapshots, lineIDs)
	if err != nil {
		l.Error("create_order_failed", "status", 500, "reason", "cannot finalize order", "order_id", order.ID, "charge", charge.ID, "error", err)
		s.compensate(ctx, order, charge.ID)
		return nil, fmt.Errorf("finalize order %s: %w", order.ID, err)
	}

	metrics.OrdersTotal.WithLabelValues(models.OrderStatusPaid).Inc()
	s.publish(ctx, "order_created", final)
	l.Info("create_order_successful", "order_id", final.ID, "user_id", caller.ID, "total", final.Total, "charge", charge.ID)
	return final, nil
}

func (s *OrderService) compensate(ctx context.Context, order *models.Order, chargeID string) {
	l := logging.FromContext(ctx).With("svc", "order.compensate", "order_id", order.ID, "charge", chargeID)
	// The request may already be cancelled; the refund must still go out.
	ctx = context.WithoutCancel(ctx)

	if chargeID != "" {
		if err := s.Charger.Refund(ctx, chargeID); err != nil {
			l.Error("refund_failed", "error", err)
		} else {
			l.Info("refund_issued")
		}
	}
	if err := s.Repo.MarkOrderFailed(ctx, order.ID, chargeID); err != nil {
		l.Error("mark_order_failed_failed", "error", err)
	}
	order.Status = models.OrderStatusFailed
	order.Charge = chargeID
	metrics.OrdersTotal.WithLabelValues(models.OrderStatusFailed).Inc()
	s.publish(ctx, "order_failed", order)
}

func totalQuantity(lines []models.CartItem) uint {
	var n uint
	for _, line := range lines {
		n += line.Quantity
	}
	return n
}

func (s *OrderService) Order(ctx context.Context, caller *models.User, id string) (*models.Order, error) {
	if caller == nil {
		return nil, ErrNotAuthenticated
	}
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if order.UserID != caller.ID && !permissions.Has(caller, permissions.Admin) {
		logging.FromContext(ctx).Warn("order_forbidden", "status", 403, "order_id", id, "user_id", caller.ID)
		return nil, fmt.Errorf("%w: order %s belongs to another user", ErrForbidden, id)
	}
	return order, nil
}

func (s *OrderService) Orders(ctx context.Context, caller *models.User) ([]models.Order, error) {
	if caller == nil {
		return nil, ErrNotAuthenticated
	}
	return s.Repo.ListOrders(ctx, caller.ID)
}

// ReconcilePending settles orders left PENDING for longer than olderThan,
// e.g. after a crash between charge and finalize. A marker without a stored
// charge is looked up at the processor by order id. Charged orders are
// refunded, then everything is marked FAILED.
func (s *OrderService) ReconcilePending(ctx context.Context, olderThan time.Duration) (int, error) {
	l := logging.FromContext(ctx).With("svc", "order.reconcile")

	stale, err := s.Repo.StalePendingOrders(ctx, nowFrom(s.Now).Add(-olderThan))
	if err != nil {
		return 0, err
	}

	var errs []error
	for i := range stale {
		order := &stale[i]
		if order.Charge == "" {
			found, err := s.Charger.FindCharge(ctx, order.ID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			order.Charge = found
		}
		if order.Charge != "" {
			if err := s.Charger.Refund(ctx, order.Charge); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		if err := s.Repo.MarkOrderFailed(ctx, order.ID, order.Charge); err != nil {
			errs = append(errs, err)
			continue
		}
		metrics.OrdersTotal.WithLabelValues(models.OrderStatusFailed).Inc()
		l.Warn("stale_order_failed", "order_id", order.ID, "user_id", order.UserID, "refunded", order.Charge)
	}
	return len(stale), errors.Join(errs...)
}
