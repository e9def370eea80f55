package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/permissions"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type ItemService struct {
	Repo   *repo.GormRepo
	Index  ItemIndexer
	Events Publisher
}

func (s *ItemService) publish(ctx context.Context, event string, item *models.Item, by string) {
	if s.Events == nil {
		return
	}
	err := s.Events.PublishEvent(ctx, mykafka.TopicItemEvents, item.ID, map[string]any{
		"type":   event,
		"itemID": item.ID,
		"title":  item.Title,
		"price":  item.Price,
		"userID": by,
	})
	if err != nil {
		logging.FromContext(ctx).Error("publish_failed", "topic", mykafka.TopicItemEvents, "type", event, "error", err)
	}
}

func (s *ItemService) reindex(ctx context.Context, item *models.Item) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexItem(ctx, item); err != nil {
		logging.FromContext(ctx).Error("index_item_failed", "item_id", item.ID, "error", err)
	}
}

func validateItem(title, description string, price int64) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	return nil
}

func (s *ItemService) CreateItem(ctx context.Context, caller *models.User, req transport.CreateItemRequest) (*models.Item, error) {
	l := logging.FromContext(ctx).With("svc", "item.create")
	if caller == nil {
		return nil, ErrNotAuthenticated
	}
	if err := validateItem(req.Title, req.Description, req.Price); err != nil {
		return nil, err
	}

	item, err := s.Repo.CreateItem(ctx, &models.Item{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		LargeImage:  req.LargeImage,
		UserID:      caller.ID,
	})
	if err != nil {
		l.Error("create_item_failed", "status", 500, "error", err)
		return nil, err
	}

	s.reindex(ctx, item)
	s.publish(ctx, "item_created", item, caller.ID)
	l.Info("create_item_successful", "item_id", item.ID, "user_id", caller.ID)
	return item, nil
}

func (s *ItemService) loadOwned(ctx context.Context, caller *models.User, id string, roles ...permissions.Permission) (*models.Item, error) {
	if caller == nil {
		return nil, ErrNotAuthenticated
	}
	item, err := s.Repo.GetItem(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if item.UserID != caller.ID && !permissions.Has(caller, roles...) {
		return nil, fmt.Errorf("%w: not the owner of item %s", ErrForbidden, id)
	}
	return item, nil
}

// UpdateItem is allowed for the owner or holders of ADMIN / ITEMUPDATE.
func (s *ItemService) UpdateItem(ctx context.Context, caller *models.User, id string, req transport.PatchItemRequest) (*models.Item, error) {
	l := logging.FromContext(ctx).With("svc", "item.update")

	current, err := s.loadOwned(ctx, caller, id, permissions.Admin, permissions.ItemUpdate)
	if err != nil {
		l.Warn("update_item_denied", "item_id", id, "error", err)
		return nil, err
	}

	title, desc, price := current.Title, current.Description, current.Price
	if req.Title != nil {
		title = *req.Title
	}
	if req.Description != nil {
		desc = *req.Description
	}
	if req.Price != nil {
		price = *req.Price
	}
	if err := validateItem(title, desc, price); err != nil {
		return nil, err
	}

	item, err := s.Repo.PatchItem(ctx, req, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		l.Error("update_item_failed", "status", 500, "item_id", id, "error", err)
		return nil, err
	}

	s.reindex(ctx, item)
	s.publish(ctx, "item_updated", item, caller.ID)
	l.Info("update_item_successful", "item_id", id, "user_id", caller.ID)
	return item, nil
}

// DeleteItem is allowed for the owner or holders of ADMIN / ITEMDELETE.
func (s *ItemService) DeleteItem(ctx context.Context, caller *models.User, id string) (*models.Item, error) {
	l := logging.FromContext(ctx).With("svc", "item.delete")

	item, err := s.loadOwned(ctx, caller, id, permissions.Admin, permissions.ItemDelete)
	if err != nil {
		l.Warn("delete_item_denied", "item_id", id, "error", err)
		return nil, err
	}

	if err := s.Repo.DeleteItem(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		l.Error("delete_item_failed", "status", 500, "item_id", id, "error", err)
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.DeleteItem(ctx, id); err != nil {
			l.Error("unindex_item_failed", "item_id", id, "error", err)
		}
	}
	s.publish(ctx, "item_deleted", item, caller.ID)
	l.Info("delete_item_successful", "item_id", id, "user_id", caller.ID)
	return item, nil
}

func (s *ItemService) Items(ctx context.Context, f transport.ItemFilter) ([]models.Item, error) {
	if !repo.ItemOrderValid(f.OrderBy) {
		return nil, fmt.Errorf("%w: unknown orderBy %q", ErrValidation, f.OrderBy)
	}
	return s.Repo.ListItems(ctx, f)
}

func (s *ItemService) Item(ctx context.Context, id string) (*models.Item, error) {
	item, err := s.Repo.GetItem(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return item, nil
}

func (s *ItemService) CountItems(ctx context.Context, f transport.ItemFilter) (int64, error) {
	return s.Repo.CountItems(ctx, f)
}

// SearchItems uses the search index when one is configured and falls back
// to a substring match in the database otherwise.
func (s *ItemService) SearchItems(ctx context.Context, query string, skip, first int) (*transport.SearchResult, []models.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, fmt.Errorf("%w: search term is required", ErrValidation)
	}

	if s.Index == nil {
		f := transport.ItemFilter{TitleContains: query, DescriptionContains: query, Skip: skip, First: first}
		total, err := s.Repo.CountItems(ctx, f)
		if err != nil {
			return nil, nil, err
		}
		items, err := s.Repo.ListItems(ctx, f)
		if err != nil {
			return nil, nil, err
		}
		ids := make([]string, len(items))
		for i := range items {
			ids[i] = items[i].ID
		}
		return &transport.SearchResult{Total: total, IDs: ids}, items, nil
	}

	total, ids, err := s.Index.Search(ctx, query, skip, first)
	if err != nil {
		logging.FromContext(ctx).Error("search_items_failed", "status", 502, "error", err)
		return nil, nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	items, err := s.Repo.ItemsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return &transport.SearchResult{Total: total, IDs: ids}, items, nil
}
