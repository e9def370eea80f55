package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
	"gorm.io/gorm"
)

var itemOrder = map[string]string{
	"":               "created_at DESC",
	"createdAt_ASC":  "created_at ASC",
	"createdAt_DESC": "created_at DESC",
	"price_ASC":      "price ASC",
	"price_DESC":     "price DESC",
	"title_ASC":      "title ASC",
	"title_DESC":     "title DESC",
}

func ItemOrderValid(orderBy string) bool {
	_, ok := itemOrder[orderBy]
	return ok
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive substring pattern in which the
// user's % and _ match literally. Empty input means no filter.
func containsPattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(s) + "%"
}

func (r *GormRepo) filterItems(ctx context.Context, f transport.ItemFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Item{})

	title := containsPattern(f.TitleContains)
	desc := containsPattern(f.DescriptionContains)
	switch {
	case title != "" && desc != "":
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, title, desc)
	case title != "":
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\'`, title)
	case desc != "":
		q = q.Where(`LOWER(description) LIKE ? ESCAPE '\'`, desc)
	}
	return q
}

func (r *GormRepo) ListItems(ctx context.Context, f transport.ItemFilter) ([]models.Item, error) {
	order, ok := itemOrder[f.OrderBy]
	if !ok {
		order = itemOrder[""]
	}

	var items []models.Item
	q := r.filterItems(ctx, f).Order(order).Order("id ASC").Offset(f.Skip)
	if f.First > 0 {
		q = q.Limit(f.First)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CountItems(ctx context.Context, f transport.ItemFilter) (int64, error) {
	var total int64
	if err := r.filterItems(ctx, f).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *GormRepo) GetItem(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ItemsByIDs returns the items in the order of ids, skipping ids that no
// longer exist.
func (r *GormRepo) ItemsByIDs(ctx context.Context, ids []string) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}
	var found []models.Item
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.Item, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}
	out := make([]models.Item, 0, len(found))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *GormRepo) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.DB.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *GormRepo) PatchItem(ctx context.Context, req transport.PatchItemRequest, id string) (*models.Item, error) {
	var item models.Item
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Image != nil {
		item.Image = *req.Image
	}
	if req.LargeImage != nil {
		item.LargeImage = *req.LargeImage
	}

	if err := r.DB.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes the item and every cart line that still points at it.
func (r *GormRepo) DeleteItem(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Item{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
