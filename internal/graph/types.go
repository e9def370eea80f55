package graph

import (
	"context"
	"fmt"
	"math"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/permissions"
	"github.com/Skotchmaster/storefront/internal/service"
	graphql "github.com/graph-gophers/graphql-go"
)

var errOutOfRange = &Error{Message: "Value does not fit in Int", Code: CodeInternal}

// toInt reports values GraphQL's 32-bit Int cannot carry instead of wrapping.
func toInt(v int64) (int32, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, errOutOfRange
	}
	return int32(v), nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type SuccessMessageResolver struct {
	message string
}

func (s *SuccessMessageResolver) Message() *string { return &s.message }

type UserResolver struct {
	root *Resolver
	user *models.User
}

func (u *UserResolver) ID() graphql.ID        { return graphql.ID(u.user.ID) }
func (u *UserResolver) Name() string          { return u.user.Name }
func (u *UserResolver) Email() string         { return u.user.Email }
func (u *UserResolver) Permissions() []string { return []string(u.user.Permissions) }

// Cart is only visible to its owner and to admins.
func (u *UserResolver) Cart(ctx context.Context) ([]*CartItemResolver, error) {
	viewer := caller(ctx)
	if viewer == nil {
		return nil, publicError(ctx, "user.cart", service.ErrNotAuthenticated)
	}
	if viewer.ID != u.user.ID && !permissions.Has(viewer, permissions.Admin) {
		return nil, publicError(ctx, "user.cart", fmt.Errorf("%w: cart of %s", service.ErrForbidden, u.user.ID))
	}

	lines, err := u.root.CartSvc.Cart(ctx, u.user.ID)
	if err != nil {
		return nil, publicError(ctx, "user.cart", err)
	}
	out := make([]*CartItemResolver, len(lines))
	for i := range lines {
		out[i] = &CartItemResolver{line: &lines[i]}
	}
	return out, nil
}

type ItemResolver struct {
	item *models.Item
}

func itemResolvers(items []models.Item) []*ItemResolver {
	out := make([]*ItemResolver, len(items))
	for i := range items {
		out[i] = &ItemResolver{item: &items[i]}
	}
	return out
}

func (i *ItemResolver) ID() graphql.ID        { return graphql.ID(i.item.ID) }
func (i *ItemResolver) Title() string         { return i.item.Title }
func (i *ItemResolver) Description() string   { return i.item.Description }
func (i *ItemResolver) Image() *string        { return optString(i.item.Image) }
func (i *ItemResolver) LargeImage() *string   { return optString(i.item.LargeImage) }
func (i *ItemResolver) Price() (int32, error) { return toInt(i.item.Price) }
func (i *ItemResolver) UserID() graphql.ID    { return graphql.ID(i.item.UserID) }

type CartItemResolver struct {
	line *models.CartItem
}

func (c *CartItemResolver) ID() graphql.ID           { return graphql.ID(c.line.ID) }
func (c *CartItemResolver) Quantity() (int32, error) { return toInt(int64(c.line.Quantity)) }

// Item is null when the item was deleted after it was put in the cart.
func (c *CartItemResolver) Item() *ItemResolver {
	if c.line.Item == nil {
		return nil
	}
	return &ItemResolver{item: c.line.Item}
}

type OrderResolver struct {
	order *models.Order
}

func (o *OrderResolver) ID() graphql.ID          { return graphql.ID(o.order.ID) }
func (o *OrderResolver) Total() (int32, error)   { return toInt(o.order.Total) }
func (o *OrderResolver) Charge() string          { return o.order.Charge }
func (o *OrderResolver) Currency() string        { return o.order.Currency }
func (o *OrderResolver) Status() string          { return o.order.Status }
func (o *OrderResolver) CreatedAt() graphql.Time { return graphql.Time{Time: o.order.CreatedAt} }

func (o *OrderResolver) Items() []*OrderItemResolver {
	out := make([]*OrderItemResolver, len(o.order.Items))
	for i := range o.order.Items {
		out[i] = &OrderItemResolver{line: &o.order.Items[i]}
	}
	return out
}

type OrderItemResolver struct {
	line *models.OrderItem
}

func (o *OrderItemResolver) ID() graphql.ID           { return graphql.ID(o.line.ID) }
func (o *OrderItemResolver) Title() string            { return o.line.Title }
func (o *OrderItemResolver) Description() string      { return o.line.Description }
func (o *OrderItemResolver) Image() *string           { return optString(o.line.Image) }
func (o *OrderItemResolver) LargeImage() *string      { return optString(o.line.LargeImage) }
func (o *OrderItemResolver) Price() (int32, error)    { return toInt(o.line.Price) }
func (o *OrderItemResolver) Quantity() (int32, error) { return toInt(int64(o.line.Quantity)) }

type ItemConnectionResolver struct {
	count int64
}

func (c *ItemConnectionResolver) Aggregate() *AggregateItemResolver {
	return &AggregateItemResolver{count: c.count}
}

type AggregateItemResolver struct {
	count int64
}

func (a *AggregateItemResolver) Count() (int32, error) { return toInt(a.count) }

type ItemSearchResolver struct {
	total int64
	items []*ItemResolver
}

func (s *ItemSearchResolver) Total() (int32, error)  { return toInt(s.total) }
func (s *ItemSearchResolver) Items() []*ItemResolver { return s.items }
