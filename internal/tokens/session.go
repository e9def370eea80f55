package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidSignature = errors.New("invalid session token signature")
	ErrSessionTooOld    = errors.New("session token too old")
)

// SessionClaims carries the user id, a token id and the signing time. There
// is no exp claim; the cookie max age bounds a session's lifetime and MaxAge
// on the Codec enforces the same bound server side.
type SessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type Codec struct {
	Secret []byte
	// MaxAge rejects tokens signed longer ago than this. Zero disables it.
	MaxAge time.Duration
	Now    func() time.Time
}

func NewCodec(secret []byte) *Codec {
	return &Codec{Secret: secret}
}

func NewJTI() string { return uuid.NewString() }

func (c *Codec) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Codec) Sign(userID string) (string, *SessionClaims, error) {
	if userID == "" {
		return "", nil, errors.New("session: empty user id")
	}
	claims := &SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       NewJTI(),
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("session: sign: %w", err)
	}
	return token, claims, nil
}

func (c *Codec) Verify(tokenStr string) (*SessionClaims, error) {
	var claims SessionClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return c.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithStrictDecoding())
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidSignature)
	}
	if c.MaxAge > 0 {
		if claims.IssuedAt == nil || c.now().Sub(claims.IssuedAt.Time) > c.MaxAge {
			return nil, ErrSessionTooOld
		}
	}
	return &claims, nil
}
