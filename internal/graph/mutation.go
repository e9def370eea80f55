package graph

import (
	"context"
	"errors"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/transport"
	graphql "github.com/graph-gophers/graphql-go"
)

func (r *Resolver) login(ctx context.Context, sess *service.Session) {
	session.FromContext(ctx).Login(sess.Token, sess.JTI, sess.User, r.CookieSecure)
}

func int64Ptr(v *int32) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func (r *Resolver) CreateItem(ctx context.Context, args struct {
	Title       string
	Description string
	Price       int32
	Image       *string
	LargeImage  *string
}) (*ItemResolver, error) {
	req := transport.CreateItemRequest{
		Title:       args.Title,
		Description: args.Description,
		Price:       int64(args.Price),
	}
	if args.Image != nil {
		req.Image = *args.Image
	}
	if args.LargeImage != nil {
		req.LargeImage = *args.LargeImage
	}

	item, err := r.ItemSvc.CreateItem(ctx, caller(ctx), req)
	if err != nil {
		return nil, publicError(ctx, "createItem", err)
	}
	return &ItemResolver{item: item}, nil
}

func (r *Resolver) UpdateItem(ctx context.Context, args struct {
	ID          graphql.ID
	Title       *string
	Description *string
	Price       *int32
	Image       *string
	LargeImage  *string
}) (*ItemResolver, error) {
	item, err := r.ItemSvc.UpdateItem(ctx, caller(ctx), string(args.ID), transport.PatchItemRequest{
		Title:       args.Title,
		Description: args.Description,
		Price:       int64Ptr(args.Price),
		Image:       args.Image,
		LargeImage:  args.LargeImage,
	})
	if err != nil {
		return nil, publicError(ctx, "updateItem", err)
	}
	return &ItemResolver{item: item}, nil
}

func (r *Resolver) DeleteItem(ctx context.Context, args struct{ ID graphql.ID }) (*ItemResolver, error) {
	item, err := r.ItemSvc.DeleteItem(ctx, caller(ctx), string(args.ID))
	if err != nil {
		return nil, publicError(ctx, "deleteItem", err)
	}
	return &ItemResolver{item: item}, nil
}

func (r *Resolver) Signup(ctx context.Context, args struct {
	Email    string
	Password string
	Name     string
}) (*UserResolver, error) {
	sess, err := r.AuthSvc.Signup(ctx, args.Email, args.Name, args.Password)
	if err != nil {
		return nil, publicError(ctx, "signup", err)
	}
	r.login(ctx, sess)
	return &UserResolver{root: r, user: sess.User}, nil
}

// Signin answers unknown email and wrong password with the same error.
func (r *Resolver) Signin(ctx context.Context, args struct {
	Email    string
	Password string
}) (*UserResolver, error) {
	sess, err := r.AuthSvc.Signin(ctx, args.Email, args.Password)
	if err != nil {
		if errors.Is(err, service.ErrNoSuchUser) || errors.Is(err, service.ErrInvalidPassword) {
			return nil, publicError(ctx, "signin", errBadCredentials)
		}
		return nil, publicError(ctx, "signin", err)
	}
	r.login(ctx, sess)
	return &UserResolver{root: r, user: sess.User}, nil
}

func (r *Resolver) Signout(ctx context.Context) *SuccessMessageResolver {
	req := session.FromContext(ctx)
	r.AuthSvc.Signout(ctx, req.UserID, req.JTI)
	req.Logout(r.CookieSecure)
	return &SuccessMessageResolver{message: "Goodbye!"}
}

func (r *Resolver) RequestReset(ctx context.Context, args struct{ Email string }) (*SuccessMessageResolver, error) {
	if err := r.AuthSvc.RequestReset(ctx, args.Email); err != nil {
		return nil, publicError(ctx, "requestReset", err)
	}
	return &SuccessMessageResolver{message: "Thanks!"}, nil
}

func (r *Resolver) ResetPassword(ctx context.Context, args struct {
	ResetToken      string
	Password        string
	ConfirmPassword string
}) (*UserResolver, error) {
	sess, err := r.AuthSvc.ResetPassword(ctx, args.ResetToken, args.Password, args.ConfirmPassword)
	if err != nil {
		return nil, publicError(ctx, "resetPassword", err)
	}
	r.login(ctx, sess)
	return &UserResolver{root: r, user: sess.User}, nil
}

func (r *Resolver) UpdatePermissions(ctx context.Context, args struct {
	Permissions []string
	UserID      graphql.ID
}) (*UserResolver, error) {
	user, err := r.AuthSvc.UpdatePermissions(ctx, caller(ctx), string(args.UserID), args.Permissions)
	if err != nil {
		return nil, publicError(ctx, "updatePermissions", err)
	}
	return &UserResolver{root: r, user: user}, nil
}

func (r *Resolver) AddToCart(ctx context.Context, args struct{ ID graphql.ID }) (*CartItemResolver, error) {
	line, err := r.CartSvc.AddToCart(ctx, caller(ctx), string(args.ID))
	if err != nil {
		return nil, publicError(ctx, "addToCart", err)
	}
	return &CartItemResolver{line: line}, nil
}

func (r *Resolver) RemoveFromCart(ctx context.Context, args struct{ ID graphql.ID }) (*CartItemResolver, error) {
	line, err := r.CartSvc.RemoveFromCart(ctx, caller(ctx), string(args.ID))
	if err != nil {
		return nil, publicError(ctx, "removeFromCart", err)
	}
	return &CartItemResolver{line: line}, nil
}

func (r *Resolver) CreateOrder(ctx context.Context, args struct{ Token string }) (*OrderResolver, error) {
	order, err := r.OrderSvc.CreateOrder(ctx, caller(ctx), args.Token)
	if err != nil {
		return nil, publicError(ctx, "createOrder", err)
	}
	return &OrderResolver{order: order}, nil
}
