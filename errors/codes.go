package errors

// ErrorCategory classifies errors by their nature and retry semantics.
type ErrorCategory string

// Error categories define how errors should be handled.
const (
	// CategoryTransient indicates temporary failures where a later attempt may succeed.
	// Examples: network timeouts, provider returning 5xx.
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent indicates failures where trying again will not help.
	// Examples: missing API key, unknown provider, malformed envelope.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryResource indicates the flow is busy or otherwise saturated.
	CategoryResource ErrorCategory = "resource"

	// CategoryInternal indicates unexpected errors, bugs, or storage failures.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable reports whether a user may reasonably trigger the action again.
// Nothing in pagesum retries automatically.
func (c ErrorCategory) IsRetryable() bool {
	switch c {
	case CategoryTransient, CategoryResource:
		return true
	default:
		return false
	}
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

// Error codes for summarization failures.
const (
	// Summarization taxonomy
	ErrCodeConfiguration       ErrorCode = "CONFIGURATION"        // No secret configured for the resolved provider
	ErrCodeUnknownProvider     ErrorCode = "UNKNOWN_PROVIDER"     // Registry lookup for an id outside the set
	ErrCodeUnsupportedProvider ErrorCode = "UNSUPPORTED_PROVIDER" // Builder/invoker given an id it has no codec for
	ErrCodeTransport           ErrorCode = "TRANSPORT"            // Provider answered with a non-2xx status
	ErrCodeProtocol            ErrorCode = "PROTOCOL"             // 2xx with an envelope that could not be decoded

	// Generic
	ErrCodeTimeout      ErrorCode = "TIMEOUT"       // Operation timed out
	ErrCodeNetworkErr   ErrorCode = "NETWORK_ERR"   // Network connectivity issue
	ErrCodeCanceled     ErrorCode = "CANCELED"      // Operation was canceled
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT" // Malformed or invalid input
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"     // Resource does not exist
	ErrCodeResourceBusy ErrorCode = "RESOURCE_BUSY" // A summarize run is already outstanding
	ErrCodeInternal     ErrorCode = "INTERNAL"      // Unexpected internal error
	ErrCodePanic        ErrorCode = "PANIC"         // Recovered from panic
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeTransport, ErrCodeTimeout, ErrCodeNetworkErr:
		return CategoryTransient

	case ErrCodeConfiguration, ErrCodeUnknownProvider, ErrCodeUnsupportedProvider,
		ErrCodeProtocol, ErrCodeCanceled, ErrCodeInvalidInput, ErrCodeNotFound:
		return CategoryPermanent

	case ErrCodeResourceBusy:
		return CategoryResource

	case ErrCodeInternal, ErrCodePanic:
		return CategoryInternal

	default:
		return CategoryInternal
	}
}

// DefaultRetryable returns whether this error code is typically retryable.
func (c ErrorCode) DefaultRetryable() bool {
	return c.DefaultCategory().IsRetryable()
}

var codeDescriptions = map[ErrorCode]string{
	ErrCodeConfiguration:       "provider is not configured",
	ErrCodeUnknownProvider:     "unknown provider",
	ErrCodeUnsupportedProvider: "unsupported provider",
	ErrCodeTransport:           "provider returned an error status",
	ErrCodeProtocol:            "unexpected response from provider",
	ErrCodeTimeout:             "operation timed out",
	ErrCodeNetworkErr:          "network connectivity error",
	ErrCodeCanceled:            "operation canceled",
	ErrCodeInvalidInput:        "invalid input provided",
	ErrCodeNotFound:            "resource not found",
	ErrCodeResourceBusy:        "a summary is already in progress",
	ErrCodeInternal:            "internal error",
	ErrCodePanic:               "recovered from panic",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
