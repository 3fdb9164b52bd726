package srvcerror

import "net/http"

// Error is a service-level error that is safe to surface to API
// clients. The error code is stable and machine-readable, the
// message is meant for humans. An optional debug error carries
// internal detail that must never leave the process via HTTP.
type Error struct {
	errorCode string
	msgToUser string // public
	dbgInfo   error  // private, for logs only

	httpStatus int // optional, for HTTP responses
}

func (e *Error) Error() string {
	return e.msgToUser
}

func (e *Error) ErrorCode() string {
	return e.errorCode
}

func (e *Error) DebugInfo() error {
	return e.dbgInfo
}

func (e *Error) SetDebug(err error) *Error {
	e.dbgInfo = err
	return e
}

func (e *Error) HttpStatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

func (e *Error) SetHttpStatusCode(code int) *Error {
	e.httpStatus = code
	return e
}

func New(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
	}
}

const ErrCodeInternalServerError = "internal_server_error"

func ErrInternalSE() *Error {
	return New(
		ErrCodeInternalServerError,
		"internal server error",
	).SetHttpStatusCode(http.StatusInternalServerError)
}
