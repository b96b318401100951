// Package errors provides the structured error taxonomy used across pagesum.
//
// Every failure surfaced to a user carries a code:
//
//   - CONFIGURATION: the resolved provider has no API key
//   - UNKNOWN_PROVIDER: a provider id outside the registry
//   - UNSUPPORTED_PROVIDER: a provider id the request builder cannot encode
//   - TRANSPORT: the provider answered with a non-2xx status
//   - PROTOCOL: the provider answered 2xx with an unreadable envelope
//   - NETWORK_ERR, TIMEOUT, CANCELED: the request never completed
//   - RESOURCE_BUSY: a summarize run is already outstanding
//
// Codes map to categories (transient, permanent, resource, internal) which
// the CLI and HTTP surfaces use to pick exit codes and status codes.
//
// # Usage
//
//	err := errors.Transport("OpenAI", 401)
//	err.Error() // "OpenAI HTTP error! status: 401"
//
//	if errors.Is(err, errors.ErrCodeTransport) { ... }
//
// Errors marshal to JSON so the HTTP API can return them as-is:
//
//	data, _ := json.Marshal(err)
package errors
