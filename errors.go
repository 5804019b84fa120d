package connpool

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorCode represents a registry error classification
type ErrorCode string

const (
	CodeError              ErrorCode = "ERROR"
	CodeConnectionNotFound ErrorCode = "CONNECTION_NOT_FOUND"
	CodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	CodeInvalidState       ErrorCode = "INVALID_STATE"
)

// Sentinel errors for quick checks
var (
	ErrPool         = errors.New("connpool: pool error")
	ErrNotFound     = errors.New("connpool: connection not found")
	ErrConnection   = errors.New("connpool: connection failed")
	ErrInvalidState = errors.New("connpool: invalid connection state")
)

// Error is a rich registry error with context
type Error struct {
	Code    ErrorCode // Error classification
	Message string    // Human-readable message
	Op      string    // Operation that failed (e.g., "CheckOut", "Open")
	Key     string    // Connection key if known
	Detail  string    // Additional detail from the driver
	Hint    string    // Hint from the driver
	Cause   error     // Underlying error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("connpool: %s", e.Message)
	if e.Op != "" {
		msg = fmt.Sprintf("connpool.%s: %s", e.Op, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for sentinel error matching.
// Every *Error is a pool error; the code selects the more specific sentinel.
func (e *Error) Is(target error) bool {
	if target == ErrPool {
		return true
	}
	switch e.Code {
	case CodeConnectionNotFound:
		return target == ErrNotFound
	case CodeConnectionFailed:
		return target == ErrConnection
	case CodeInvalidState:
		return target == ErrInvalidState
	}
	return false
}

// newNotFoundError builds the error returned when key is not registered
func newNotFoundError(op string, key any) *Error {
	k := keyString(key)
	return &Error{
		Code:    CodeConnectionNotFound,
		Message: k + " not found",
		Op:      op,
		Key:     k,
	}
}

// wrapOpenError converts a native open failure to a rich Error
func wrapOpenError(err error, key any) error {
	if err == nil {
		return nil
	}

	var poolErr *Error
	if errors.As(err, &poolErr) {
		return err
	}

	e := &Error{
		Code:    CodeConnectionFailed,
		Message: "failed to open connection",
		Op:      "Open",
		Key:     keyString(key),
		Cause:   err,
	}

	// PostgreSQL backends report server-side rejections (auth, unknown
	// database) as PgError.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		e.Detail = pgErr.Detail
		e.Hint = pgErr.Hint
		if pgErr.Detail == "" {
			e.Detail = pgErr.Message
		}
	}

	return e
}

// IsPoolError checks if error originates from the registry
func IsPoolError(err error) bool {
	return errors.Is(err, ErrPool)
}

// IsNotFound checks if error is a connection not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConnection checks if error is a native open failure
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsInvalidState checks if error is a handle misuse error
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// GetErrorCode extracts the error code if it's a connpool error
func GetErrorCode(err error) (ErrorCode, bool) {
	var poolErr *Error
	if errors.As(err, &poolErr) {
		return poolErr.Code, true
	}
	return "", false
}

// GetKey extracts the connection key if available
func GetKey(err error) (string, bool) {
	var poolErr *Error
	if errors.As(err, &poolErr) && poolErr.Key != "" {
		return poolErr.Key, true
	}
	return "", false
}

// GetDetail extracts the driver error detail if available
func GetDetail(err error) (string, bool) {
	var poolErr *Error
	if errors.As(err, &poolErr) && poolErr.Detail != "" {
		return poolErr.Detail, true
	}
	return "", false
}
