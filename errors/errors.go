package errors

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SummaryError is the interface for all structured errors in pagesum.
// The message is what the user sees; code and category drive how the
// surfaces (CLI exit codes, HTTP statuses, metrics labels) react.
type SummaryError interface {
	error

	// Code returns the specific error code identifying the failure type.
	Code() ErrorCode

	// Category returns the error category.
	Category() ErrorCategory

	// Retryable returns true if the user may trigger the action again.
	Retryable() bool

	// Metadata returns additional context as key-value pairs.
	Metadata() map[string]string

	// Unwrap returns the underlying error, if any.
	Unwrap() error
}

// Error is the concrete implementation of SummaryError.
type Error struct {
	code      ErrorCode
	category  ErrorCategory
	message   string
	cause     error
	metadata  map[string]string
	retryable *bool // set only when decoded from JSON
	timestamp time.Time
	provider  string // provider display name, if applicable
	status    int    // HTTP status, for TRANSPORT errors
}

var (
	_ SummaryError     = (*Error)(nil)
	_ json.Marshaler   = (*Error)(nil)
	_ json.Unmarshaler = (*Error)(nil)
)

// Error returns the error message.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.category
}

// Retryable returns whether this error is retryable.
func (e *Error) Retryable() bool {
	if e.retryable != nil {
		return *e.retryable
	}
	return e.category.IsRetryable()
}

// Metadata returns a copy of the error metadata.
func (e *Error) Metadata() map[string]string {
	result := make(map[string]string, len(e.metadata))
	for k, v := range e.metadata {
		result[k] = v
	}
	return result
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Timestamp returns when the error occurred.
func (e *Error) Timestamp() time.Time {
	return e.timestamp
}

// Provider returns the provider display name, if set.
func (e *Error) Provider() string {
	return e.provider
}

// Status returns the HTTP status code, or 0.
func (e *Error) Status() int {
	return e.status
}

type errorJSON struct {
	Code      ErrorCode         `json:"code"`
	Category  ErrorCategory     `json:"category"`
	Message   string            `json:"message"`
	Cause     string            `json:"cause,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Retryable bool              `json:"retryable"`
	Timestamp string            `json:"timestamp,omitempty"`
	Provider  string            `json:"provider,omitempty"`
	Status    int               `json:"status,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	j := errorJSON{
		Code:      e.code,
		Category:  e.category,
		Message:   e.message,
		Metadata:  e.metadata,
		Retryable: e.Retryable(),
		Provider:  e.provider,
		Status:    e.status,
	}
	if e.cause != nil {
		j.Cause = e.cause.Error()
	}
	if !e.timestamp.IsZero() {
		j.Timestamp = e.timestamp.Format(time.RFC3339Nano)
	}
	return json.Marshal(j)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Error) UnmarshalJSON(data []byte) error {
	var j errorJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	e.code = j.Code
	e.category = j.Category
	e.message = j.Message
	e.metadata = j.Metadata
	e.provider = j.Provider
	e.status = j.Status
	r := j.Retryable
	e.retryable = &r
	if j.Cause != "" {
		e.cause = fmt.Errorf("%s", j.Cause)
	}
	if j.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339Nano, j.Timestamp); err == nil {
			e.timestamp = t
		}
	}
	return nil
}

// Option is a functional option for configuring an Error.
type Option func(*Error)

// WithMetadata adds a metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(e *Error) {
		if e.metadata == nil {
			e.metadata = make(map[string]string)
		}
		e.metadata[key] = value
	}
}

// WithProvider records the provider display name.
func WithProvider(name string) Option {
	return func(e *Error) {
		e.provider = name
		WithMetadata("provider", name)(e)
	}
}

// WithStatus records an HTTP status code.
func WithStatus(status int) Option {
	return func(e *Error) {
		e.status = status
		WithMetadata("status", strconv.Itoa(status))(e)
	}
}

// WithCause sets the underlying cause.
func WithCause(cause error) Option {
	return func(e *Error) {
		e.cause = cause
	}
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string, opts ...Option) *Error {
	e := &Error{
		code:      code,
		category:  code.DefaultCategory(),
		message:   message,
		timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromCode creates an error with the default description for the code.
func FromCode(code ErrorCode, opts ...Option) *Error {
	return New(code, code.Description(), opts...)
}

// Configuration reports that the resolved provider has no secret.
// The message is shown verbatim to the user.
func Configuration(providerName string, opts ...Option) *Error {
	opts = append([]Option{WithProvider(providerName)}, opts...)
	return New(ErrCodeConfiguration,
		fmt.Sprintf("Please set your %s API key in extension options.", providerName), opts...)
}

// UnknownProvider reports a provider id outside the registry.
func UnknownProvider(id string, opts ...Option) *Error {
	opts = append([]Option{WithMetadata("provider_id", id)}, opts...)
	return New(ErrCodeUnknownProvider, fmt.Sprintf("unknown provider %q", id), opts...)
}

// UnsupportedProvider reports a provider id with no request codec.
func UnsupportedProvider(id string, opts ...Option) *Error {
	opts = append([]Option{WithMetadata("provider_id", id)}, opts...)
	return New(ErrCodeUnsupportedProvider, fmt.Sprintf("unsupported provider %q", id), opts...)
}

// Transport reports a non-success HTTP status from a provider.
func Transport(providerName string, status int, opts ...Option) *Error {
	opts = append([]Option{WithProvider(providerName), WithStatus(status)}, opts...)
	return New(ErrCodeTransport, fmt.Sprintf("%s HTTP error! status: %d", providerName, status), opts...)
}

// Protocol reports a success status with an envelope that could not be decoded.
func Protocol(providerName string, opts ...Option) *Error {
	opts = append([]Option{WithProvider(providerName)}, opts...)
	return New(ErrCodeProtocol, fmt.Sprintf("unexpected response from %s", providerName), opts...)
}

// InvalidInput creates an invalid input error.
func InvalidInput(message string, opts ...Option) *Error {
	return New(ErrCodeInvalidInput, message, opts...)
}

// NotFound creates a not found error.
func NotFound(message string, opts ...Option) *Error {
	return New(ErrCodeNotFound, message, opts...)
}

// Busy reports that a summarize run is already outstanding.
func Busy(opts ...Option) *Error {
	return FromCode(ErrCodeResourceBusy, opts...)
}

// Internal creates an internal error.
func Internal(message string, opts ...Option) *Error {
	return New(ErrCodeInternal, message, opts...)
}
