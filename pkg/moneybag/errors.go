package moneybag

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies a failed gateway call.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindAuthentication
	KindValidation
	KindAPI
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindValidation:
		return "validation"
	case KindAPI:
		return "api"
	case KindTransport:
		return "transport"
	}
	return "generic"
}

// Error is returned by every failed Checkout, Verify and Refund call. It keeps
// the HTTP status and the raw response body so callers can log and decide
// recovery; StatusCode is 0 for local validation and transport failures where
// no response was received.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Raw        []byte
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("moneybag: %s error: %s (status %d)", e.Kind, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("moneybag: %s error: %s", e.Kind, e.Message)
}

func newValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func newTransportError(msg string) *Error {
	return &Error{Kind: KindTransport, Message: msg}
}

// IsAuthentication reports whether err is a 401/403 from the gateway.
func IsAuthentication(err error) bool { return hasKind(err, KindAuthentication) }

// IsValidation reports whether err is a local pre-flight failure or a 400/422
// from the gateway.
func IsValidation(err error) bool { return hasKind(err, KindValidation) }

// IsTransport reports whether err means no HTTP response was received at all.
func IsTransport(err error) bool { return hasKind(err, KindTransport) }

func hasKind(err error, kind ErrorKind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// classify maps a non-success HTTP result to a typed error per the gateway's
// status contract: 401/403 auth, 400/422 validation, 404/5xx API, anything
// else generic.
func classify(res *Result) *Error {
	kind := KindGeneric
	switch res.StatusCode {
	case 401, 403:
		kind = KindAuthentication
	case 400, 422:
		kind = KindValidation
	case 404, 500, 502, 503, 504:
		kind = KindAPI
	}
	return &Error{
		Kind:       kind,
		Message:    errorMessage(res),
		StatusCode: res.StatusCode,
		Raw:        res.Raw,
	}
}

// errorMessage extracts the most specific message available from a failure
// envelope: a plain "data" string first, then the "errors" map flattened to
// "field: m1, m2; field2: m3", then the top-level message.
func errorMessage(res *Result) string {
	if res.Body != nil {
		if s, ok := res.Body["data"].(string); ok && s != "" {
			return s
		}
		if errs, ok := res.Body["errors"].(map[string]any); ok && len(errs) > 0 {
			return flattenErrors(errs)
		}
		if s, ok := res.Body["message"].(string); ok && s != "" {
			return s
		}
	}
	if res.Message != "" {
		return res.Message
	}
	return "request failed"
}

func flattenErrors(errs map[string]any) string {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		var msgs []string
		switch v := errs[f].(type) {
		case string:
			msgs = append(msgs, v)
		case []any:
			for _, m := range v {
				if s, ok := m.(string); ok {
					msgs = append(msgs, s)
				}
			}
		}
		if len(msgs) == 0 {
			continue
		}
		parts = append(parts, f+": "+strings.Join(msgs, ", "))
	}
	if len(parts) == 0 {
		return "request failed"
	}
	return strings.Join(parts, "; ")
}
