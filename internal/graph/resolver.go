// Package graph exposes the shop's operations as a GraphQL API.
package graph

import (
	"context"
	"errors"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	graphql "github.com/graph-gophers/graphql-go"
)

// Resolver is the root for both queries and mutations.
type Resolver struct {
	AuthSvc      *service.AuthService
	ItemSvc      *service.ItemService
	CartSvc      *service.CartService
	OrderSvc     *service.OrderService
	CookieSecure bool
	PerPage      int
}

func NewSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(Schema, r,
		graphql.MaxDepth(12),
		graphql.MaxParallelism(10),
	)
}

func caller(ctx context.Context) *models.User {
	return session.FromContext(ctx).User
}

type itemWhereInput struct {
	TitleContains       *string
	DescriptionContains *string
}

func (w *itemWhereInput) filter() transport.ItemFilter {
	var f transport.ItemFilter
	if w == nil {
		return f
	}
	if w.TitleContains != nil {
		f.TitleContains = *w.TitleContains
	}
	if w.DescriptionContains != nil {
		f.DescriptionContains = *w.DescriptionContains
	}
	return f
}

func (r *Resolver) Items(ctx context.Context, args struct {
	Where   *itemWhereInput
	OrderBy *string
	Skip    *int32
	First   *int32
}) ([]*ItemResolver, error) {
	f := args.Where.filter()
	if args.OrderBy != nil {
		f.OrderBy = *args.OrderBy
	}
	f.Skip, f.First = util.Window(args.Skip, args.First, r.PerPage)

	items, err := r.ItemSvc.Items(ctx, f)
	if err != nil {
		return nil, publicError(ctx, "items", err)
	}
	return itemResolvers(items), nil
}

func (r *Resolver) Item(ctx context.Context, args struct {
	Where struct{ ID graphql.ID }
}) (*ItemResolver, error) {
	item, err := r.ItemSvc.Item(ctx, string(args.Where.ID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, nil
		}
		return nil, publicError(ctx, "item", err)
	}
	return &ItemResolver{item: item}, nil
}

func (r *Resolver) ItemsConnection(ctx context.Context, args struct{ Where *itemWhereInput }) (*ItemConnectionResolver, error) {
	count, err := r.ItemSvc.CountItems(ctx, args.Where.filter())
	if err != nil {
		return nil, publicError(ctx, "itemsConnection", err)
	}
	return &ItemConnectionResolver{count: count}, nil
}

func (r *Resolver) SearchItems(ctx context.Context, args struct {
	Term  string
	Skip  *int32
	First *int32
}) (*ItemSearchResolver, error) {
	skip, first := util.Window(args.Skip, args.First, r.PerPage)
	res, items, err := r.ItemSvc.SearchItems(ctx, args.Term, skip, first)
	if err != nil {
		return nil, publicError(ctx, "searchItems", err)
	}
	return &ItemSearchResolver{total: res.Total, items: itemResolvers(items)}, nil
}

func (r *Resolver) Me(ctx context.Context) *UserResolver {
	user := caller(ctx)
	if user == nil {
		return nil
	}
	return &UserResolver{root: r, user: user}
}

func (r *Resolver) Users(ctx context.Context) ([]*UserResolver, error) {
	users, err := r.AuthSvc.Users(ctx, caller(ctx))
	if err != nil {
		return nil, publicError(ctx, "users", err)
	}
	out := make([]*UserResolver, len(users))
	for i := range users {
		out[i] = &UserResolver{root: r, user: &users[i]}
	}
	return out, nil
}

func (r *Resolver) Order(ctx context.Context, args struct{ ID graphql.ID }) (*OrderResolver, error) {
	order, err := r.OrderSvc.Order(ctx, caller(ctx), string(args.ID))
	if err != nil {
		return nil, publicError(ctx, "order", err)
	}
	return &OrderResolver{order: order}, nil
}

func (r *Resolver) Orders(ctx context.Context) ([]*OrderResolver, error) {
	orders, err := r.OrderSvc.Orders(ctx, caller(ctx))
	if err != nil {
		return nil, publicError(ctx, "orders", err)
	}
	out := make([]*OrderResolver, len(orders))
	for i := range orders {
		out[i] = &OrderResolver{order: &orders[i]}
	}
	return out, nil
}
