// Package domain defines the persistence entities, the transport models that
// mirror them, and the Messenger envelope returned by every service method.
package domain

import "net/http"

// Envelope status codes. They mirror HTTP semantics but are not HTTP statuses
// themselves; the transport layer decides how to map them.
const (
	CodeOK            = http.StatusOK
	CodeBadRequest    = http.StatusBadRequest
	CodeNotFound      = http.StatusNotFound
	CodeInternalError = http.StatusInternalServerError
)

// Messenger is the uniform result of a service operation.
//
// Data is set only for successful outcomes. Failures carry their detail in
// Message and nowhere else.
type Messenger struct {
	Code    int    `json:"code"    example:"200"`
	Message string `json:"message" example:"diary emotion found"`
	Data    any    `json:"data,omitempty"`
}

// OK builds a success envelope. data may be nil for side-effect-only
// operations.
func OK(message string, data any) Messenger {
	return Messenger{Code: CodeOK, Message: message, Data: data}
}

// BadRequest builds a validation failure envelope.
func BadRequest(message string) Messenger {
	return Messenger{Code: CodeBadRequest, Message: message}
}

// NotFound builds a not-found envelope.
func NotFound(message string) Messenger {
	return Messenger{Code: CodeNotFound, Message: message}
}

// InternalError builds a failure envelope whose message includes the captured
// error description, if any.
func InternalError(message string, err error) Messenger {
	if err != nil {
		message = message + ": " + err.Error()
	}
	return Messenger{Code: CodeInternalError, Message: message}
}

// Success reports whether the envelope represents a successful outcome.
func (m Messenger) Success() bool { return m.Code == CodeOK }
