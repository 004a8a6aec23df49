package model

import "errors"

// ErrorCode is a stable machine-readable code surfaced verbatim to callers.
type ErrorCode string

const (
	CodeInvalidConfiguration ErrorCode = "InvalidConfiguration"
	CodeNotFound             ErrorCode = "NotFound"
	CodeRoomFull             ErrorCode = "RoomFull"
	CodeInvalidPhase         ErrorCode = "InvalidPhase"
	CodeUnknownPlayer        ErrorCode = "UnknownPlayer"
	CodeInvalidTarget        ErrorCode = "InvalidTarget"
	CodeInvalidName          ErrorCode = "InvalidName"
	CodeLockTimeout          ErrorCode = "LockTimeout"
	CodeStoreUnavailable     ErrorCode = "StoreUnavailable"
)

// GameError carries an ErrorCode through the service layer so the transport
// can map it to a status without string matching.
type GameError struct {
	Code    ErrorCode
	Message string
}

func (e *GameError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewGameError builds a typed error with a stable code.
func NewGameError(code ErrorCode, message string) *GameError {
	return &GameError{Code: code, Message: message}
}

// ErrCode extracts the ErrorCode from err, or "" when err carries none.
func ErrCode(err error) ErrorCode {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// IsRetryable reports whether the caller may safely retry the operation.
// Lock contention fails before any mutation, so no partial state exists.
func IsRetryable(err error) bool {
	return ErrCode(err) == CodeLockTimeout
}
