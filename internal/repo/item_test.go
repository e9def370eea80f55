package repo

import (
	"context"
	"testing"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(items []models.Item) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].Title
	}
	return out
}

func TestListItems_FilterAndOrder(t *testing.T) {
	ctx := context.Background()
	r := New(InitTestDB(t))
	u := seedUser(t, r, "a@b.c")
	seedItem(t, r, u.ID, "Red Shoes", 300)
	seedItem(t, r, u.ID, "Blue Hat", 100)
	seedItem(t, r, u.ID, "Green Shoes", 200)

	items, err := r.ListItems(ctx, transport.ItemFilter{TitleContains: "shoes", OrderBy: "price_ASC"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Green Shoes", "Red Shoes"}, titles(items))

	items, err = r.ListItems(ctx, transport.ItemFilter{OrderBy: "title_ASC", First: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Blue Hat", "Green Shoes"}, titles(items))

	n, err := r.CountItems(ctx, transport.ItemFilter{DescriptionContains: "HAT"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestListItems_WildcardsMatchLiterally(t *testing.T) {
	ctx := context.Background()
	r := New(InitTestDB(t))
	u := seedUser(t, r, "a@b.c")
	seedItem(t, r, u.ID, "100% Cotton Tee", 1)
	seedItem(t, r, u.ID, "1000 Thread Sheets", 1)
	seedItem(t, r, u.ID, "snake_case mug", 1)
	seedItem(t, r, u.ID, "snakeXcase mug", 1)
	seedItem(t, r, u.ID, `back\slash poster`, 1)

	items, err := r.ListItems(ctx, transport.ItemFilter{TitleContains: "100%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Cotton Tee"}, titles(items))

	items, err = r.ListItems(ctx, transport.ItemFilter{TitleContains: "snake_"})
	require.NoError(t, err)
	assert.Equal(t, []string{"snake_case mug"}, titles(items))

	n, err := r.CountItems(ctx, transport.ItemFilter{TitleContains: "%"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	items, err = r.ListItems(ctx, transport.ItemFilter{TitleContains: `k\s`})
	require.NoError(t, err)
	assert.Equal(t, []string{`back\slash poster`}, titles(items))
}

func TestItemOrderValid(t *testing.T) {
	assert.True(t, ItemOrderValid(""))
	assert.True(t, ItemOrderValid("price_DESC"))
	assert.False(t, ItemOrderValid("price; DROP TABLE items"))
}

func TestItemsByIDs_KeepsRequestedOrder(t *testing.T) {
	ctx := context.Background()
	r := New(InitTestDB(t))
	u := seedUser(t, r, "a@b.c")
	a := seedItem(t, r, u.ID, "A", 1)
	b := seedItem(t, r, u.ID, "B", 2)

	items, err := r.ItemsByIDs(ctx, []string{b.ID, "gone", a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, titles(items))
}

func TestPatchItem_LeavesNilFields(t *testing.T) {
	ctx := context.Background()
	r := New(InitTestDB(t))
	u := seedUser(t, r, "a@b.c")
	it := seedItem(t, r, u.ID, "Lamp", 900)

	price := int64(450)
	got, err := r.PatchItem(ctx, transport.PatchItemRequest{Price: &price}, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Title)
	assert.EqualValues(t, 450, got.Price)
}

func TestDeleteItem_RemovesCartLines(t *testing.T) {
	ctx := context.Background()
	r := New(InitTestDB(t))
	u := seedUser(t, r, "a@b.c")
	it := seedItem(t, r, u.ID, "Lamp", 900)
	_, err := r.AddToCart(ctx, u.ID, it.ID)
	require.NoError(t, err)

	require.NoError(t, r.DeleteItem(ctx, it.ID))

	cart, err := r.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
	assert.True(t, IsNotFound(r.DeleteItem(ctx, it.ID)))
}
