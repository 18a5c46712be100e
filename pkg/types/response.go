// Package types defines the wire envelopes shared by every catalog endpoint.
package types

// SuccessEnvelope wraps any successful response payload, page envelopes and
// single items alike.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body: a stable code, a safe message, and
// optional details such as per-field validation messages or readiness checks.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError for the wire.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
