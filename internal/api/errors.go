package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Kind classifies a failed API call.
type Kind int

const (
	// KindNetwork means no response was received at all: connection
	// refused, DNS failure, or timeout.
	KindNetwork Kind = iota
	// KindServer means the server responded with a non-2xx status.
	KindServer
)

// RequestError is the uniform failure shape for every API call.
// Messages is always non-empty and suitable for direct display,
// so callers never need to type-check the error value.
type RequestError struct {
	// Kind tells whether a response was received.
	Kind Kind
	// Status is the HTTP status code, zero for network errors.
	Status int
	// Messages holds one or more human-readable error messages.
	Messages []string
}

func (e *RequestError) Error() string {
	return strings.Join(e.Messages, "; ")
}

const networkFailureMessage = "Could not reach the server. Please try again."

func newNetworkError() *RequestError {
	return &RequestError{Kind: KindNetwork, Messages: []string{networkFailureMessage}}
}

// serverError builds a RequestError from a non-2xx response body. The
// backend's error envelope is {"error": {"message": <string or list>}},
// with a bare {"error": "..."} string tolerated as well. Anything else
// falls back to the HTTP status text.
func serverError(status int, body []byte) *RequestError {
	msgs := envelopeMessages(body)
	if len(msgs) == 0 {
		msgs = []string{http.StatusText(status)}
	}
	return &RequestError{Kind: KindServer, Status: status, Messages: msgs}
}

func envelopeMessages(body []byte) []string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &envelope) != nil || len(envelope.Error) == 0 {
		return nil
	}

	var s string
	if json.Unmarshal(envelope.Error, &s) == nil && s != "" {
		return []string{s}
	}

	var obj struct {
		Message json.RawMessage `json:"message"`
	}
	if json.Unmarshal(envelope.Error, &obj) != nil || len(obj.Message) == 0 {
		return nil
	}
	if json.Unmarshal(obj.Message, &s) == nil && s != "" {
		return []string{s}
	}
	var list []string
	if json.Unmarshal(obj.Message, &list) == nil && len(list) > 0 {
		return list
	}
	return nil
}
