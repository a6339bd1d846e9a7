package model

import (
	"net/http"

	"github.com/festy23/ctf_platform/internal/apperr"
)

var (
	// ErrWriteupNotFound indicates that the requested writeup does not exist.
	ErrWriteupNotFound = apperr.New(apperr.KindNotFound, apperr.NoData, "writeup not found")
	// ErrProblemNotFound indicates that the writeup names an unknown problem.
	ErrProblemNotFound = apperr.New(apperr.KindParam, apperr.DataErr, "problem does not exist")
	// ErrNotOwner indicates that only the author may modify the writeup.
	ErrNotOwner = apperr.NewWithStatus(apperr.KindAuth, apperr.UserErr, http.StatusForbidden, "not the author of this writeup")
)
