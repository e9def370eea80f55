package session

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/storefront/internal/models"
)

// Request is the per-request identity. UserID and User are empty for
// anonymous requests; User is only set once the record has been hydrated.
type Request struct {
	UserID string
	JTI    string
	User   *models.User

	setCookie func(*http.Cookie)
}

type ctxKey struct{}

func NewRequest(setCookie func(*http.Cookie)) *Request {
	return &Request{setCookie: setCookie}
}

func IntoContext(ctx context.Context, r *Request) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromContext never returns nil; a context without a Request is anonymous.
func FromContext(ctx context.Context) *Request {
	if v := ctx.Value(ctxKey{}); v != nil {
		if r, ok := v.(*Request); ok && r != nil {
			return r
		}
	}
	return &Request{}
}

func (r *Request) Authenticated() bool {
	return r.UserID != ""
}

func (r *Request) SetCookie(c *http.Cookie) {
	if r.setCookie != nil {
		r.setCookie(c)
	}
}

// Login switches the request to userID and hands the session cookie to the
// response.
func (r *Request) Login(token string, claimsJTI string, user *models.User, secure bool) {
	r.UserID = user.ID
	r.JTI = claimsJTI
	r.User = user
	r.SetCookie(CreateCookie(token, secure))
}

func (r *Request) Logout(secure bool) {
	r.UserID = ""
	r.JTI = ""
	r.User = nil
	r.SetCookie(DeleteCookie(secure))
}
