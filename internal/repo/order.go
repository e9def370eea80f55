package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *GormRepo) DeleteOrder(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{}).Error
}

// SetOrderCharge records the charge on a still-pending order so a crash
// before finalize leaves something to refund.
func (r *GormRepo) SetOrderCharge(ctx context.Context, id, chargeID string) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Update("charge", chargeID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FinalizeOrder writes the line snapshots, marks the order paid and empties
// the cart lines that were charged for, all in one transaction.
func (r *GormRepo) FinalizeOrder(ctx context.Context, orderID, chargeID string, lines []models.OrderItem, cartLineIDs []string) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Updates(map[string]any{"status": models.OrderStatusPaid, "charge": chargeID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if len(cartLineIDs) > 0 {
			if err := tx.Where("id IN ?", cartLineIDs).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Items").Where("id = ?", orderID).First(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) MarkOrderFailed(ctx context.Context, id, chargeID string) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": models.OrderStatusFailed, "charge": chargeID}).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND status = ?", userID, models.OrderStatusPaid).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) StalePendingOrders(ctx context.Context, before time.Time) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.OrderStatusPending, before).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
