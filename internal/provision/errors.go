package provision

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a provisioning failure.
type Kind string

const (
	KindBadInput    Kind = "bad_input"
	KindNotFound    Kind = "not_found"
	KindUnsupported Kind = "unsupported"
	KindUpstream    Kind = "upstream_failure"
)

// Error is the single failure shape this layer hands to callers. Data holds
// structured context that is safe to log or display; Debug holds raw
// diagnostic payloads (response bodies, rollback outcomes) that may need
// separate filtering.
type Error struct {
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Debug   map[string]any `json:"debug,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.cause.Error())
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithData sets a structured context value, overwriting any existing key.
func (e *Error) WithData(key string, value any) *Error {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

// WithDebug sets a raw diagnostic value, overwriting any existing key.
func (e *Error) WithDebug(key string, value any) *Error {
	if e.Debug == nil {
		e.Debug = make(map[string]any)
	}
	e.Debug[key] = value
	return e
}

// BadInput reports missing or malformed caller-supplied identifiers.
func BadInput(message string) *Error {
	return &Error{Kind: KindBadInput, Message: message}
}

// NotFound reports an absent or deleted vendor resource.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Unsupported reports an operation the vendor does not offer.
func Unsupported(message string) *Error {
	return &Error{Kind: KindUnsupported, Message: message}
}

// IsNotFound reports whether err is a normalized not-found failure.
func IsNotFound(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindNotFound
}

// UpstreamError is returned by vendor clients on a non-2xx response. It
// carries the raw status and body so Normalize can preserve them.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream API error: status code %d", e.Status)
}

// Normalize converts err into the uniform *Error shape.
//
// An *Error passing through gets extraData/extraDebug merged into its maps
// (new keys win) and keeps its message unless overrideMessage is set. An
// *UpstreamError becomes a KindUpstream *Error: a JSON-parseable body lands
// in data under response_data, an opaque body in debug under response_body.
// Every other error type is returned unchanged; translating a programming
// error into a vendor error would only hide it.
func Normalize(err error, extraData, extraDebug map[string]any, overrideMessage string) error {
	var pe *Error
	if errors.As(err, &pe) {
		for k, v := range extraData {
			pe.WithData(k, v)
		}
		for k, v := range extraDebug {
			pe.WithDebug(k, v)
		}
		if overrideMessage != "" {
			pe.Message = overrideMessage
		}
		return pe
	}

	var ue *UpstreamError
	if errors.As(err, &ue) {
		message := overrideMessage
		if message == "" {
			message = fmt.Sprintf("Provider API request failed with status %d", ue.Status)
		}
		ne := &Error{Kind: KindUpstream, Message: message, cause: ue}
		ne.WithData("response_code", ue.Status)

		var parsed any
		if len(ue.Body) > 0 && json.Unmarshal(ue.Body, &parsed) == nil {
			ne.WithData("response_data", parsed)
		} else if len(ue.Body) > 0 {
			ne.WithDebug("response_body", string(ue.Body))
		}

		for k, v := range extraData {
			ne.WithData(k, v)
		}
		for k, v := range extraDebug {
			ne.WithDebug(k, v)
		}
		return ne
	}

	return err
}
