package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	var lines []models.CartItem
	if err := r.DB.WithContext(ctx).
		Preload("Item").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormRepo) GetCartItem(ctx context.Context, id string) (*models.CartItem, error) {
	var line models.CartItem
	if err := r.DB.WithContext(ctx).Preload("Item").Where("id = ?", id).First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// AddToCart bumps the quantity of an existing (user, item) line in place and
// only inserts when there is none.
func (r *GormRepo) AddToCart(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	var line models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND item_id = ?", userID, itemID).
			Update("quantity", gorm.Expr("quantity + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			line = models.CartItem{UserID: userID, ItemID: itemID, Quantity: 1}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Item").Where("user_id = ? AND item_id = ?", userID, itemID).First(&line).Error
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
