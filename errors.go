package jsoning

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes (exported consts for IDE completion and errors.Is matching)
const (
	CodeConfiguration    = "configuration"
	CodeProtocolNotFound = "protocol_not_found"
	CodeVersionNotFound  = "version_not_found"
	CodeValidation       = "validation"
	// Raised only when WithMaxDepth is set.
	CodeDepthExceeded = "depth_exceeded"
	// Encoding/decoding failures reported by a Driver.
	CodeDriver = "driver"
)

// Sentinels for errors.Is. Any *Error with the same Code matches.
var (
	ErrConfiguration    = &Error{Code: CodeConfiguration}
	ErrProtocolNotFound = &Error{Code: CodeProtocolNotFound}
	ErrVersionNotFound  = &Error{Code: CodeVersionNotFound}
	ErrValidation       = &Error{Code: CodeValidation}
	ErrDepthExceeded    = &Error{Code: CodeDepthExceeded}
	ErrDriver           = &Error{Code: CodeDriver}
)

// Error is the single error type produced by declaration, generation and
// reconstruction.
type Error struct {
	Code    string  // One of the codes listed above.
	Type    TypeKey // Type identity involved, when known.
	Version string  // Requested version name, when relevant.
	Field   string  // Output name of the field, for validation errors.
	// Object is a best-effort, truncated rendering of the offending host object.
	Object  string
	Message string
	Cause   error // Optional: underlying error.
}

// Error renders "jsoning: <code>: <message> [type=... version=... field=...]".
func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString("jsoning: ")
	b.WriteString(e.Code)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	var attrs []string
	if e.Type != "" {
		attrs = append(attrs, "type="+string(e.Type))
	}
	if e.Version != "" {
		attrs = append(attrs, "version="+e.Version)
	}
	if e.Field != "" {
		attrs = append(attrs, "field="+e.Field)
	}
	if e.Object != "" {
		attrs = append(attrs, "object="+e.Object)
	}
	if len(attrs) > 0 {
		fmt.Fprintf(b, " [%s]", strings.Join(attrs, " "))
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts an *Error from err using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func configError(format string, args ...any) *Error {
	return &Error{Code: CodeConfiguration, Message: fmt.Sprintf(format, args...)}
}

func protocolNotFound(key TypeKey) *Error {
	return &Error{Code: CodeProtocolNotFound, Type: key, Message: "undefined protocol"}
}

func versionNotFound(key TypeKey, version string) *Error {
	return &Error{Code: CodeVersionNotFound, Type: key, Version: version, Message: "undefined version"}
}

func driverError(d Driver, op string, err error) *Error {
	return &Error{Code: CodeDriver, Message: fmt.Sprintf("%s via %s failed", op, d.Name()), Cause: err}
}

const maxObjectRender = 120

// describe renders a host object for error messages.
func describe(v any) string {
	s := fmt.Sprintf("%+v", v)
	if len(s) > maxObjectRender {
		s = s[:maxObjectRender] + "..."
	}
	return s
}
