package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events Publisher
}

func (s *CartService) publish(ctx context.Context, event string, line *models.CartItem) {
	if s.Events == nil {
		return
	}
	err := s.Events.PublishEvent(ctx, mykafka.TopicCartEvents, line.UserID, map[string]any{
		"type":     event,
		"userID":   line.UserID,
		"itemID":   line.ItemID,
		"quantity": line.Quantity,
	})
	if err != nil {
		logging.FromContext(ctx).Error("publish_failed", "topic", mykafka.TopicCartEvents, "type", event, "error", err)
	}
}

func (s *CartService) Cart(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.Repo.GetCart(ctx, userID)
}

func (s *CartService) AddToCart(ctx context.Context, caller *models.User, itemID string) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add")
	if caller == nil {
		return nil, ErrNotAuthenticated
	}

	if _, err := s.Repo.GetItem(ctx, itemID); err != nil {
		if repo.IsNotFound(err) {
			l.Warn("add_to_cart_failed", "status", 404, "item_id", itemID)
			return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		return nil, err
	}

	line, err := s.Repo.AddToCart(ctx, caller.ID, itemID)
	if err != nil {
		l.Error("add_to_cart_failed", "status", 500, "item_id", itemID, "error", err)
		return nil, err
	}

	s.publish(ctx, "cart_item_added", line)
	l.Info("add_to_cart_successful", "user_id", caller.ID, "item_id", itemID, "quantity", line.Quantity)
	return line, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, caller *models.User, cartItemID string) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.remove")
	if caller == nil {
		return nil, ErrNotAuthenticated
	}

	line, err := s.Repo.GetCartItem(ctx, cartItemID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("cart item %s: %w", cartItemID, ErrNotFound)
		}
		return nil, err
	}
	if line.UserID != caller.ID {
		l.Warn("remove_from_cart_forbidden", "status", 403, "user_id", caller.ID, "cart_item_id", cartItemID)
		return nil, fmt.Errorf("%w: cart item %s belongs to another user", ErrForbidden, cartItemID)
	}

	if err := s.Repo.DeleteCartItem(ctx, cartItemID); err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("cart item %s: %w", cartItemID, ErrNotFound)
		}
		return nil, err
	}

	s.publish(ctx, "cart_item_removed", line)
	l.Info("remove_from_cart_successful", "user_id", caller.ID, "cart_item_id", cartItemID)
	return line, nil
}
