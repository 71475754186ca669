package rabbit

import (
	"errors"
	"net"
	"strings"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Errors returned by TranslateError. They abstract away the AMQP specific
// error details so callers can decide whether to retry.
var (
	ErrConnectionFailed     = errors.New("connection failed")
	ErrConnectionLost       = errors.New("connection lost")
	ErrConnectionClosed     = errors.New("connection closed")
	ErrChannelClosed        = errors.New("channel closed")
	ErrChannelError         = errors.New("channel error")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAccessDenied         = errors.New("access denied")
	ErrNotFound             = errors.New("exchange, queue or vhost not found")
	ErrResourceLocked       = errors.New("resource locked")
	ErrPreconditionFailed   = errors.New("precondition failed")
	ErrNotAllowed           = errors.New("not allowed")
	ErrProtocolError        = errors.New("protocol error")
	ErrInternalError        = errors.New("internal error")
	ErrTimeout              = errors.New("timeout")
	ErrNetworkError         = errors.New("network error")
	ErrMissingQueue         = errors.New("queue name is required")
	ErrMissingExchange      = errors.New("exchange name is required")
	ErrUnknownError         = errors.New("unknown error")
)

// TranslateError maps AMQP, network and syscall errors onto the package
// errors above. Unrecognized errors map to ErrUnknownError.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return translateAMQPError(amqpErr)
	}

	// syscall.Errno also implements net.Error, so it is checked first.
	var syscallErr syscall.Errno
	if errors.As(err, &syscallErr) {
		return translateSyscallError(syscallErr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkError
	}

	return ErrUnknownError
}

func translateAMQPError(amqpErr *amqp.Error) error {
	switch amqpErr.Code {
	case amqp.ConnectionForced:
		return ErrConnectionClosed
	case amqp.AccessRefused:
		if strings.Contains(strings.ToLower(amqpErr.Reason), "login") {
			return ErrAuthenticationFailed
		}
		return ErrAccessDenied
	case amqp.NotFound, amqp.InvalidPath:
		return ErrNotFound
	case amqp.ResourceLocked:
		return ErrResourceLocked
	case amqp.PreconditionFailed:
		return ErrPreconditionFailed
	case amqp.ChannelError:
		return ErrChannelError
	case amqp.NotAllowed:
		return ErrNotAllowed
	case amqp.InternalError, amqp.ResourceError:
		return ErrInternalError
	case amqp.FrameError, amqp.SyntaxError, amqp.CommandInvalid, amqp.UnexpectedFrame, amqp.NotImplemented:
		return ErrProtocolError
	default:
		return ErrUnknownError
	}
}

func translateSyscallError(syscallErr syscall.Errno) error {
	switch syscallErr {
	case syscall.ECONNREFUSED:
		return ErrConnectionFailed
	case syscall.ECONNRESET, syscall.ECONNABORTED, syscall.EPIPE, syscall.ENOTCONN:
		return ErrConnectionLost
	case syscall.ETIMEDOUT:
		return ErrTimeout
	case syscall.EACCES, syscall.EPERM:
		return ErrAccessDenied
	default:
		return ErrNetworkError
	}
}

// IsRetryableError reports whether reconnecting may fix err.
func IsRetryableError(err error) bool {
	switch {
	case errors.Is(err, ErrConnectionFailed),
		errors.Is(err, ErrConnectionLost),
		errors.Is(err, ErrConnectionClosed),
		errors.Is(err, ErrChannelClosed),
		errors.Is(err, ErrChannelError),
		errors.Is(err, ErrTimeout),
		errors.Is(err, ErrNetworkError),
		errors.Is(err, ErrInternalError),
		errors.Is(err, ErrResourceLocked):
		return true
	default:
		return false
	}
}
