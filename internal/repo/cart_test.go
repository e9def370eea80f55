package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToCart_IncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	r := New(InitTestDB(t))
	u := seedUser(t, r, "a@b.c")
	it := seedItem(t, r, u.ID, "Shoes", 500)

	first, err := r.AddToCart(ctx, u.ID, it.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Quantity)

	second, err := r.AddToCart(ctx, u.ID, it.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 2, second.Quantity)
	require.NotNil(t, second.Item)
	assert.Equal(t, "Shoes", second.Item.Title)

	cart, err := r.GetCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.EqualValues(t, 2, cart[0].Quantity)
}

func TestDeleteCartItem_Missing(t *testing.T) {
	r := New(InitTestDB(t))
	assert.True(t, IsNotFound(r.DeleteCartItem(context.Background(), "nope")))
}
