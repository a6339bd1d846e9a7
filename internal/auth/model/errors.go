package model

import (
	"net/http"

	"github.com/festy23/ctf_platform/internal/apperr"
)

var (
	// ErrNotLoggedIn indicates a missing, expired or revoked session.
	ErrNotLoggedIn = apperr.New(apperr.KindAuth, apperr.SessionErr, "not logged in")
	// ErrAdminRequired indicates that the endpoint needs an admin session.
	ErrAdminRequired = apperr.NewWithStatus(apperr.KindAuth, apperr.AdminErr, http.StatusForbidden, "admin session required")
	// ErrUserRequired indicates that the endpoint needs a user session.
	ErrUserRequired = apperr.NewWithStatus(apperr.KindAuth, apperr.RoleErr, http.StatusForbidden, "user session required")
	// ErrInvalidCredentials indicates an unknown account or a wrong password.
	ErrInvalidCredentials = apperr.New(apperr.KindAuth, apperr.DataErr, "wrong email or password")
	// ErrNotVerified indicates that the account email is not confirmed yet.
	ErrNotVerified = apperr.NewWithStatus(apperr.KindAuth, apperr.ParamErr, http.StatusForbidden, "verify your email first")
	// ErrTooManyAttempts indicates that the client IP is locked out.
	ErrTooManyAttempts = apperr.NewWithStatus(apperr.KindAuth, apperr.ReqErr, http.StatusTooManyRequests, "too many failed logins, try again later")
	// ErrEmailTaken indicates that the email is already registered.
	ErrEmailTaken = apperr.New(apperr.KindConflict, apperr.DataExist, "email already registered")
	// ErrNameTaken indicates that the user name is already registered.
	ErrNameTaken = apperr.New(apperr.KindConflict, apperr.DataExist, "user name already registered")
	// ErrTokenInvalid indicates a malformed or expired confirmation link.
	ErrTokenInvalid = apperr.New(apperr.KindParam, apperr.TimeErr, "confirmation link is invalid or expired")
	// ErrAlreadyVerified indicates that no confirmation is pending.
	ErrAlreadyVerified = apperr.New(apperr.KindConflict, apperr.DataErr, "email already verified")
	// ErrAccountNotFound indicates that no account matches the request.
	ErrAccountNotFound = apperr.New(apperr.KindNotFound, apperr.UserErr, "account not found")
	// ErrSessionStore indicates that the session store is unreachable.
	ErrSessionStore = apperr.New(apperr.KindExternal, apperr.ThirdErr, "session store unavailable")
)
