package model

import (
	"net/http"

	"github.com/festy23/ctf_platform/internal/apperr"
)

var (
	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = apperr.New(apperr.KindNotFound, apperr.UserErr, "user not found")
	// ErrNameTaken indicates that another account already uses the name.
	ErrNameTaken = apperr.New(apperr.KindConflict, apperr.DataExist, "user name already exists")
	// ErrEmailTaken indicates that another account already uses the email.
	ErrEmailTaken = apperr.New(apperr.KindConflict, apperr.DataExist, "email already exists")
	// ErrWrongPassword indicates that the old password did not match.
	ErrWrongPassword = apperr.NewWithStatus(apperr.KindAuth, apperr.PwdErr, http.StatusForbidden, "wrong password")
	// ErrSameEmail indicates that the new email equals the current one.
	ErrSameEmail = apperr.New(apperr.KindParam, apperr.ParamErr, "email unchanged")
)
