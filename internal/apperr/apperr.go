// Package apperr defines the error taxonomy shared by every domain package.
//
// Domain packages declare sentinel errors with New; handlers recover the kind,
// errno and message with As and render them through the response package.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind string

// Error kinds.
const (
	KindParam       Kind = "PARAM"
	KindAuth        Kind = "AUTH"
	KindConflict    Kind = "STATE_CONFLICT"
	KindNotFound    Kind = "NOT_FOUND"
	KindPersistence Kind = "PERSISTENCE"
	KindExternal    Kind = "EXTERNAL"
)

// Errno is the numeric error code carried in the response envelope.
type Errno string

// Error codes understood by the web client.
const (
	OK         Errno = "0"
	DBErr      Errno = "4001"
	NoData     Errno = "4002"
	DataExist  Errno = "4003"
	DataErr    Errno = "4004"
	SessionErr Errno = "4101"
	LoginErr   Errno = "4102"
	ParamErr   Errno = "4103"
	UserErr    Errno = "4104"
	RoleErr    Errno = "4105"
	PwdErr     Errno = "4106"
	AdminErr   Errno = "4107"
	ReqErr     Errno = "4201"
	IPErr      Errno = "4202"
	ThirdErr   Errno = "4301"
	IOErr      Errno = "4302"
	MailErr    Errno = "4303"
	FileErr    Errno = "4304"
	TimeErr    Errno = "4305"
	ServerErr  Errno = "4500"
	UnknownErr Errno = "4501"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Errno   Errno
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an error whose HTTP status follows from its kind.
func New(kind Kind, errno Errno, message string) *Error {
	return &Error{Kind: kind, Errno: errno, Message: message, Status: statusFor(kind)}
}

// NewWithStatus creates an error with an explicit HTTP status.
func NewWithStatus(kind Kind, errno Errno, status int, message string) *Error {
	return &Error{Kind: kind, Errno: errno, Message: message, Status: status}
}

// Common errors used across packages.
var (
	// ErrInternal hides unexpected persistence failures from clients.
	ErrInternal = New(KindPersistence, DBErr, "database error")
	// ErrInvalidParams reports a malformed or incomplete request.
	ErrInvalidParams = New(KindParam, ParamErr, "invalid parameters")
	// ErrUnknownAction reports an unsupported action selector.
	ErrUnknownAction = New(KindParam, ParamErr, "unknown action")
	// ErrServer reports a recovered panic.
	ErrServer = NewWithStatus(KindPersistence, ServerErr, http.StatusInternalServerError, "internal server error")
)

// As extracts the classified error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindPersistence for unclassified errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindPersistence
}

func statusFor(kind Kind) int {
	switch kind {
	case KindParam:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
