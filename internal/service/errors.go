package service

import (
	"errors"

	"github.com/Skotchmaster/storefront/internal/permissions"
)

var (
	ErrValidation       = errors.New("validation")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrNotAuthenticated = errors.New("you must be logged in")
	ErrForbidden        = permissions.ErrForbidden
	ErrUpstream         = errors.New("upstream failure")

	ErrNoSuchUser            = errors.New("no such user found")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrPasswordMismatch      = errors.New("passwords don't match")
	ErrInvalidOrExpiredToken = errors.New("this token is either invalid or expired")
	ErrEmailTaken            = errors.New("email already registered")
)
