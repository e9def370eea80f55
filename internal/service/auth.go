package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/mailer"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/permissions"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/lib/pq"
)

type AuthService struct {
	Repo        *repo.GormRepo
	Codec       *tokens.Codec
	Mailer      Mailer
	Events      Publisher
	FrontendURL string
	Now         func() time.Time
}

// Session is a freshly signed session for User; the caller turns it into
// the response cookie.
type Session struct {
	User  *models.User
	Token string
	JTI   string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, claims, err := s.Codec.Sign(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, JTI: claims.ID}, nil
}

func (s *AuthService) publish(ctx context.Context, user *models.User, event string) {
	if s.Events == nil {
		return
	}
	err := s.Events.PublishEvent(ctx, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":   event,
		"userID": user.ID,
		"email":  user.Email,
	})
	if err != nil {
		logging.FromContext(ctx).Error("publish_failed", "topic", mykafka.TopicUserEvents, "type", event, "error", err)
	}
}

func (s *AuthService) Signup(ctx context.Context, email, name, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" || password == "" {
		return nil, fmt.Errorf("%w: email, name and password are required", ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("signup_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:       email,
		Name:        name,
		Password:    pwHash,
		Permissions: pq.StringArray{permissions.User},
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("signup", "error").Inc()
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("signup_error", "status", 409, "reason", "email already registered")
			return nil, fmt.Errorf("%w: %w", ErrConflict, ErrEmailTaken)
		}
		l.Error("signup_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	sess, err := s.issue(user)
	if err != nil {
		l.Error("signup_error", "status", 500, "reason", "cannot sign session", "error", err)
		return nil, err
	}

	metrics.AuthEventsTotal.WithLabelValues("signup", "ok").Inc()
	s.publish(ctx, user, "user_signed_up")
	l.Info("signup_successful", "user_id", user.ID)
	return sess, nil
}

func (s *AuthService) Signin(ctx context.Context, email, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signin")
	email = normalizeEmail(email)

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		metrics.AuthEventsTotal.WithLabelValues("signin", "error").Inc()
		if repo.IsNotFound(err) {
			l.Warn("signin_failed", "status", 401, "reason", "unknown email")
			return nil, ErrNoSuchUser
		}
		l.Error("signin_failed", "status", 500, "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.Password, password) {
		metrics.AuthEventsTotal.WithLabelValues("signin", "error").Inc()
		l.Warn("signin_failed", "status", 401, "reason", "password mismatch", "user_id", user.ID)
		return nil, ErrInvalidPassword
	}

	sess, err := s.issue(user)
	if err != nil {
		l.Error("signin_failed", "status", 500, "reason", "cannot sign session", "error", err)
		return nil, err
	}

	metrics.AuthEventsTotal.WithLabelValues("signin", "ok").Inc()
	l.Info("signin_successful", "user_id", user.ID)
	return sess, nil
}

// Signout denylists the session's token id. It never fails; a denylist
// write error is only logged since the cookie is cleared regardless.
func (s *AuthService) Signout(ctx context.Context, userID, jti string) {
	l := logging.FromContext(ctx).With("svc", "auth.signout")
	metrics.AuthEventsTotal.WithLabelValues("signout", "ok").Inc()
	if jti == "" {
		return
	}
	if err := s.Repo.RevokeSession(ctx, jti, userID, nowFrom(s.Now).UTC()); err != nil {
		l.Error("signout_revoke_failed", "user_id", userID, "error", err)
		return
	}
	l.Info("signout_successful", "user_id", userID)
}

// SessionRevoked reports whether jti was signed out.
func (s *AuthService) SessionRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	return s.Repo.SessionRevoked(ctx, jti)
}

// CurrentUser loads the user behind a verified session; nil when the user
// no longer exists.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, nil
	}
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.request_reset")

	user, err := s.Repo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("request_reset_failed", "status", 404, "reason", "unknown email")
			return fmt.Errorf("%w: %w", ErrNotFound, ErrNoSuchUser)
		}
		return err
	}

	token, expiry, err := tokens.NewResetToken(nowFrom(s.Now))
	if err != nil {
		l.Error("request_reset_failed", "status", 500, "reason", "cannot generate token", "error", err)
		return err
	}
	if err := s.Repo.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		l.Error("request_reset_failed", "status", 500, "reason", "cannot store token", "error", err)
		return err
	}

	if err := s.Mailer.SendMail(ctx, user.Email, "Your Password Reset Token", mailer.ResetEmail(s.FrontendURL, token)); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("request_reset", "error").Inc()
		l.Error("request_reset_failed", "status", 502, "reason", "cannot send mail", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: send reset mail: %w", ErrUpstream, err)
	}

	metrics.AuthEventsTotal.WithLabelValues("request_reset", "ok").Inc()
	l.Info("request_reset_sent", "user_id", user.ID)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, resetToken, password, confirmPassword string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	if password != confirmPassword {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrPasswordMismatch)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if resetToken == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrInvalidOrExpiredToken)
	}

	user, err := s.Repo.FindUserByResetToken(ctx, resetToken, nowFrom(s.Now).UnixMilli())
	if err != nil {
		if repo.IsNotFound(err) {
			metrics.AuthEventsTotal.WithLabelValues("reset_password", "error").Inc()
			l.Warn("reset_password_failed", "status", 400, "reason", "invalid or expired token")
			return nil, fmt.Errorf("%w: %w", ErrValidation, ErrInvalidOrExpiredToken)
		}
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.ConsumeResetToken(ctx, user.ID, resetToken, pwHash); err != nil {
		if errors.Is(err, repo.ErrStaleResetToken) {
			l.Warn("reset_password_failed", "status", 400, "reason", "token consumed concurrently", "user_id", user.ID)
			return nil, fmt.Errorf("%w: %w", ErrValidation, ErrInvalidOrExpiredToken)
		}
		return nil, err
	}
	user.Password = pwHash
	user.ResetToken = nil
	user.ResetTokenExpiry = nil

	sess, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	metrics.AuthEventsTotal.WithLabelValues("reset_password", "ok").Inc()
	s.publish(ctx, user, "user_password_reset")
	l.Info("reset_password_successful", "user_id", user.ID)
	return sess, nil
}

func (s *AuthService) Users(ctx context.Context, caller *models.User) ([]models.User, error) {
	if caller == nil {
		return nil, ErrNotAuthenticated
	}
	if err := permissions.Check(caller, permissions.Admin, permissions.PermissionUpdate); err != nil {
		logging.FromContext(ctx).Warn("users_forbidden", "user_id", caller.ID)
		return nil, err
	}
	return s.Repo.ListUsers(ctx)
}

func (s *AuthService) UpdatePermissions(ctx context.Context, caller *models.User, userID string, perms []string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_permissions")
	if caller == nil {
		return nil, ErrNotAuthenticated
	}
	if err := permissions.Check(caller, permissions.Admin, permissions.PermissionUpdate); err != nil {
		l.Warn("update_permissions_forbidden", "status", 403, "user_id", caller.ID)
		return nil, err
	}

	normalized, err := permissions.Normalize(perms)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := s.Repo.UpdatePermissions(ctx, userID, normalized)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		l.Error("update_permissions_failed", "status", 500, "error", err)
		return nil, err
	}

	s.publish(ctx, user, "user_permissions_updated")
	l.Info("update_permissions_successful", "by", caller.ID, "user_id", user.ID, "permissions", normalized)
	return user, nil
}
