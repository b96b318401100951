package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil.
// If err is already a SummaryError, its code and provider details carry over.
// Context and network failures map to TIMEOUT, CANCELED and NETWORK_ERR;
// anything else becomes INTERNAL.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	var sumErr *Error
	if errors.As(err, &sumErr) {
		wrapped := &Error{
			code:      sumErr.code,
			category:  sumErr.category,
			message:   message,
			cause:     err,
			metadata:  sumErr.Metadata(),
			retryable: sumErr.retryable,
			timestamp: sumErr.timestamp,
			provider:  sumErr.provider,
			status:    sumErr.status,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeTimeout, message, append(opts, WithCause(err))...)
	}
	if errors.Is(err, context.Canceled) {
		return New(ErrCodeCanceled, message, append(opts, WithCause(err))...)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return New(ErrCodeTimeout, message, append(opts, WithCause(err))...)
		}
		return New(ErrCodeNetworkErr, message, append(opts, WithCause(err))...)
	}

	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// WrapWithCode wraps an error with a specific error code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// AsSummaryError extracts a SummaryError from an error chain.
// Returns nil if none is found.
func AsSummaryError(err error) SummaryError {
	var sumErr *Error
	if errors.As(err, &sumErr) {
		return sumErr
	}
	return nil
}

// Is checks if the outermost structured error in the chain has the given code.
func Is(err error, code ErrorCode) bool {
	var sumErr *Error
	if errors.As(err, &sumErr) {
		return sumErr.code == code
	}
	return false
}

// IsCategory checks if the outermost structured error has the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var sumErr *Error
	if errors.As(err, &sumErr) {
		return sumErr.category == category
	}
	return false
}

// IsRetryable checks if the error is retryable.
func IsRetryable(err error) bool {
	var sumErr *Error
	if errors.As(err, &sumErr) {
		return sumErr.Retryable()
	}
	return false
}

// Code extracts the error code from an error, if available.
// Plain errors report INTERNAL; nil reports "".
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var sumErr *Error
	if errors.As(err, &sumErr) {
		return sumErr.code
	}
	return ErrCodeInternal
}

// Category extracts the error category from an error, if available.
func Category(err error) ErrorCategory {
	var sumErr *Error
	if errors.As(err, &sumErr) {
		return sumErr.category
	}
	return ""
}

// Message returns the user-facing message of the outermost structured
// error, without its cause chain. Plain errors return err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var sumErr *Error
	if errors.As(err, &sumErr) {
		return sumErr.message
	}
	return err.Error()
}

// Cause returns the root cause of the error chain.
func Cause(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		inner := unwrapper.Unwrap()
		if inner == nil {
			return err
		}
		err = inner
	}
}

// Join combines multiple errors into a single error.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// RecoverPanic converts a recovered panic value into an Error.
func RecoverPanic(recovered interface{}) *Error {
	if recovered == nil {
		return nil
	}
	var message string
	switch v := recovered.(type) {
	case error:
		message = v.Error()
	case string:
		message = v
	default:
		message = fmt.Sprintf("%v", v)
	}
	return New(ErrCodePanic, message, WithMetadata("panic_value", fmt.Sprintf("%T", recovered)))
}

// Display returns the text shown to a user. Taxonomy errors show their own
// message only; everything else (network, timeout, internal) also shows
// the underlying cause.
func Display(err error) string {
	if err == nil {
		return ""
	}
	switch Code(err) {
	case ErrCodeConfiguration, ErrCodeUnknownProvider, ErrCodeUnsupportedProvider,
		ErrCodeTransport, ErrCodeProtocol, ErrCodeResourceBusy:
		return Message(err)
	default:
		return err.Error()
	}
}
