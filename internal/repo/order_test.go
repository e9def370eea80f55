package repo

import (
	"context"
	"testing"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeOrder(t *testing.T) {
	ctx := context.Background()
	r := New(InitTestDB(t))
	u := seedUser(t, r, "a@b.c")
	it := seedItem(t, r, u.ID, "Lamp", 900)
	line, err := r.AddToCart(ctx, u.ID, it.ID)
	require.NoError(t, err)

	order, err := r.CreateOrder(ctx, &models.Order{UserID: u.ID, Total: 900, Currency: "usd", Status: models.OrderStatusPending})
	require.NoError(t, err)

	listed, err := r.ListOrders(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, listed, "pending orders are not listed")

	final, err := r.FinalizeOrder(ctx, order.ID, "ch_1", []models.OrderItem{{
		OrderID: order.ID, UserID: u.ID, Title: it.Title, Description: it.Description, Price: it.Price, Quantity: 1,
	}}, []string{line.ID})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, final.Status)
	assert.Equal(t, "ch_1", final.Charge)
	require.Len(t, final.Items, 1)

	cart, err := r.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	_, err = r.FinalizeOrder(ctx, order.ID, "ch_2", nil, nil)
	assert.True(t, IsNotFound(err), "an order is finalized once")

	listed, err = r.ListOrders(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestStalePendingOrders(t *testing.T) {
	ctx := context.Background()
	r := New(InitTestDB(t))
	u := seedUser(t, r, "a@b.c")

	pending, err := r.CreateOrder(ctx, &models.Order{UserID: u.ID, Currency: "usd", Status: models.OrderStatusPending})
	require.NoError(t, err)
	_, err = r.CreateOrder(ctx, &models.Order{UserID: u.ID, Currency: "usd", Status: models.OrderStatusPaid})
	require.NoError(t, err)

	stale, err := r.StalePendingOrders(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, pending.ID, stale[0].ID)

	stale, err = r.StalePendingOrders(ctx, time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, stale)
}
