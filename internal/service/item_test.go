package service

import (
	"context"
	"testing"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/permissions"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	indexed map[string]*models.Item
	deleted []string
	hits    []string
}

func (f *fakeIndex) IndexItem(_ context.Context, item *models.Item) error {
	if f.indexed == nil {
		f.indexed = map[string]*models.Item{}
	}
	f.indexed[item.ID] = item
	return nil
}

func (f *fakeIndex) DeleteItem(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []string, error) {
	return int64(len(f.hits)), f.hits, nil
}

func newItemService(t *testing.T) (*ItemService, *repo.GormRepo, *fakeIndex) {
	t.Helper()
	r := repo.New(InitTestDB(t))
	idx := &fakeIndex{}
	return &ItemService{Repo: r, Index: idx, Events: &fakePublisher{}}, r, idx
}

func TestItemService_CreateItem(t *testing.T) {
	svc, r, idx := newItemService(t)
	ctx := context.Background()
	owner := seedUser(t, r, "owner@b.c")

	_, err := svc.CreateItem(ctx, nil, transport.CreateItemRequest{Title: "T", Description: "D", Price: 1})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.CreateItem(ctx, owner, transport.CreateItemRequest{Title: "T", Description: "D", Price: -1})
	assert.ErrorIs(t, err, ErrValidation)

	item, err := svc.CreateItem(ctx, owner, transport.CreateItemRequest{Title: " Lamp ", Description: "Bright", Price: 1200})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", item.Title)
	assert.Equal(t, owner.ID, item.UserID)
	assert.Contains(t, idx.indexed, item.ID)
}

func TestItemService_DeleteItem_OwnerOrPermission(t *testing.T) {
	svc, r, idx := newItemService(t)
	ctx := context.Background()
	owner := seedUser(t, r, "owner@b.c")
	stranger := seedUser(t, r, "stranger@b.c")
	deleter := seedUser(t, r, "deleter@b.c", permissions.ItemDelete)

	mine := seedItem(t, r, owner, "Mine", 100)
	other := seedItem(t, r, owner, "Other", 100)

	_, err := svc.DeleteItem(ctx, stranger, mine.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.DeleteItem(ctx, owner, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)

	// holding ITEMDELETE is enough without owning the item
	_, err = svc.DeleteItem(ctx, deleter, other.ID)
	require.NoError(t, err)

	_, err = svc.DeleteItem(ctx, owner, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ElementsMatch(t, []string{mine.ID, other.ID}, idx.deleted)
}

func TestItemService_UpdateItem(t *testing.T) {
	svc, r, _ := newItemService(t)
	ctx := context.Background()
	owner := seedUser(t, r, "owner@b.c")
	stranger := seedUser(t, r, "stranger@b.c")
	admin := seedUser(t, r, "admin@b.c", permissions.Admin)
	item := seedItem(t, r, owner, "Lamp", 100)

	title := "Hacked"
	_, err := svc.UpdateItem(ctx, stranger, item.ID, transport.PatchItemRequest{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	empty := ""
	_, err = svc.UpdateItem(ctx, owner, item.ID, transport.PatchItemRequest{Title: &empty})
	assert.ErrorIs(t, err, ErrValidation)

	price := int64(250)
	got, err := svc.UpdateItem(ctx, admin, item.ID, transport.PatchItemRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Title)
	assert.EqualValues(t, 250, got.Price)

	_, err = svc.UpdateItem(ctx, owner, "missing", transport.PatchItemRequest{Price: &price})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemService_Items_RejectsUnknownOrder(t *testing.T) {
	svc, _, _ := newItemService(t)
	_, err := svc.Items(context.Background(), transport.ItemFilter{OrderBy: "id; --"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestItemService_SearchItems(t *testing.T) {
	svc, r, idx := newItemService(t)
	ctx := context.Background()
	owner := seedUser(t, r, "owner@b.c")
	a := seedItem(t, r, owner, "Red Lamp", 100)
	b := seedItem(t, r, owner, "Blue Lamp", 100)

	idx.hits = []string{b.ID, a.ID}
	res, items, err := svc.SearchItems(ctx, "lamp", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)
	require.Len(t, items, 2)
	assert.Equal(t, "Blue Lamp", items[0].Title)

	svc.Index = nil
	res, items, err = svc.SearchItems(ctx, "red", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)

	_, _, err = svc.SearchItems(ctx, "  ", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}
