package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_Anonymous(t *testing.T) {
	r := FromContext(context.Background())
	require.NotNil(t, r)
	assert.False(t, r.Authenticated())
	assert.Nil(t, r.User)

	r.SetCookie(CreateCookie("x", false))
}

func TestLoginLogout_SetCookies(t *testing.T) {
	var got []*http.Cookie
	r := NewRequest(func(c *http.Cookie) { got = append(got, c) })
	ctx := IntoContext(context.Background(), r)

	FromContext(ctx).Login("signed", "jti-1", &models.User{ID: "u1"}, true)
	assert.True(t, r.Authenticated())
	assert.Equal(t, "u1", r.UserID)
	assert.Equal(t, "jti-1", r.JTI)

	FromContext(ctx).Logout(true)
	assert.False(t, r.Authenticated())

	require.Len(t, got, 2)
	assert.Equal(t, CookieName, got[0].Name)
	assert.Equal(t, "signed", got[0].Value)
	assert.True(t, got[0].HttpOnly)
	assert.True(t, got[0].Secure)
	assert.Equal(t, 604800, got[0].MaxAge)
	assert.Equal(t, -1, got[1].MaxAge)
	assert.Empty(t, got[1].Value)
}
