package model

import "github.com/festy23/ctf_platform/internal/apperr"

var (
	// ErrUnknownKind indicates an unsupported leaderboard selector.
	ErrUnknownKind = apperr.New(apperr.KindParam, apperr.ParamErr, "unknown leaderboard type")
	// ErrUserNotFound indicates that points were awarded to a missing user.
	ErrUserNotFound = apperr.New(apperr.KindNotFound, apperr.UserErr, "user not found")
	// ErrTeamNotFound indicates that a missing team was adjusted.
	ErrTeamNotFound = apperr.New(apperr.KindNotFound, apperr.DataErr, "team not found")
	// ErrNegativeDelta indicates an attempt to award negative points.
	ErrNegativeDelta = apperr.New(apperr.KindParam, apperr.ParamErr, "points delta must not be negative")
)
