package core

// Error codes for domain errors.
const (
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeUnreachable        = "unreachable"
	ErrCodePersistenceFailure = "persistence_failure"
	ErrCodeBadRequest         = "bad_request"
	ErrCodeNotJoined          = "not_joined"
	ErrCodeNotMember          = "not_member"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeInternal           = "internal_error"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// NewError builds a client-facing error. Transports use it for failures
// detected before a command reaches the hub.
func NewError(code, msg string) *CoreError {
	return coreError(code, msg)
}
