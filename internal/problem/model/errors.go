package model

import "github.com/festy23/ctf_platform/internal/apperr"

var (
	// ErrProblemNotFound indicates that the requested problem does not exist.
	ErrProblemNotFound = apperr.New(apperr.KindNotFound, apperr.NoData, "problem not found")
	// ErrDuplicateName indicates that another problem already uses the name.
	ErrDuplicateName = apperr.New(apperr.KindConflict, apperr.DataExist, "problem name already exists")
	// ErrDuplicateFlag indicates that another problem already uses the flag.
	ErrDuplicateFlag = apperr.New(apperr.KindConflict, apperr.DataExist, "problem flag already exists")
	// ErrAttachmentRequired indicates that a non-web problem was created without a file.
	ErrAttachmentRequired = apperr.New(apperr.KindParam, apperr.ParamErr, "attachment is required for non-web problems")
	// ErrNoAttachment indicates that the problem has no downloadable file.
	ErrNoAttachment = apperr.New(apperr.KindNotFound, apperr.NoData, "problem has no attachment")
	// ErrNotWeb indicates that an environment was requested for a non-web problem.
	ErrNotWeb = apperr.New(apperr.KindParam, apperr.ParamErr, "problem has no environment")
	// ErrNoEnvironment indicates that a web problem has no environment link configured.
	ErrNoEnvironment = apperr.New(apperr.KindNotFound, apperr.NoData, "problem environment is not available")
	// ErrStorage indicates that the attachment could not be stored or removed.
	ErrStorage = apperr.New(apperr.KindExternal, apperr.FileErr, "attachment storage failed")
)
