package model

import (
	"net/http"

	"github.com/festy23/ctf_platform/internal/apperr"
)

var (
	// ErrDuplicateName indicates that a team with the given name already exists.
	ErrDuplicateName = apperr.New(apperr.KindConflict, apperr.DataExist, "team name already exists")
	// ErrAlreadyOnTeam indicates that the user already belongs to a team.
	ErrAlreadyOnTeam = apperr.New(apperr.KindConflict, apperr.ParamErr, "already on a team")
	// ErrNotOnTeam indicates that the user does not belong to any team.
	ErrNotOnTeam = apperr.New(apperr.KindConflict, apperr.ParamErr, "not on a team")
	// ErrTeamNotFound indicates that the requested team does not exist.
	ErrTeamNotFound = apperr.New(apperr.KindNotFound, apperr.DataErr, "team not found")
	// ErrWrongCode indicates that the invite code did not match.
	ErrWrongCode = apperr.NewWithStatus(apperr.KindConflict, apperr.DataErr, http.StatusForbidden, "wrong team code")
	// ErrMustTransferOrDissolve indicates that a captain with members tried to leave.
	ErrMustTransferOrDissolve = apperr.New(apperr.KindConflict, apperr.ParamErr, "captain must transfer captaincy before leaving")
	// ErrTeamNotEmpty indicates that a team with other members cannot be dissolved.
	ErrTeamNotEmpty = apperr.New(apperr.KindConflict, apperr.ParamErr, "team still has members")
	// ErrNotCaptain indicates that only the captain may perform the operation.
	ErrNotCaptain = apperr.NewWithStatus(apperr.KindAuth, apperr.ParamErr, http.StatusForbidden, "only the captain can do this")
	// ErrNotAMember indicates that the target user is not on the caller's team.
	ErrNotAMember = apperr.New(apperr.KindNotFound, apperr.DataErr, "user is not a member of this team")
)
