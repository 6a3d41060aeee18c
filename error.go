package caffe

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Code is an error code that mirrors the http status codes. Middleware returns errors that carry a code so the
// dispatcher can pick the status of the failure response without inspecting error strings.
type Code int

const (
	CodeUnknown                       Code = 0
	CodeBadRequest                    Code = http.StatusBadRequest                    // RFC 9110, 15.5.1
	CodeUnauthorized                  Code = http.StatusUnauthorized                  // RFC 9110, 15.5.2
	CodePaymentRequired               Code = http.StatusPaymentRequired               // RFC 9110, 15.5.3
	CodeForbidden                     Code = http.StatusForbidden                     // RFC 9110, 15.5.4
	CodeNotFound                      Code = http.StatusNotFound                      // RFC 9110, 15.5.5
	CodeMethodNotAllowed              Code = http.StatusMethodNotAllowed              // RFC 9110, 15.5.6
	CodeNotAcceptable                 Code = http.StatusNotAcceptable                 // RFC 9110, 15.5.7
	CodeRequestTimeout                Code = http.StatusRequestTimeout                // RFC 9110, 15.5.9
	CodeConflict                      Code = http.StatusConflict                      // RFC 9110, 15.5.10
	CodeGone                          Code = http.StatusGone                          // RFC 9110, 15.5.11
	CodePreconditionFailed            Code = http.StatusPreconditionFailed            // RFC 9110, 15.5.13
	CodeRequestEntityTooLarge         Code = http.StatusRequestEntityTooLarge         // RFC 9110, 15.5.14
	CodeUnsupportedMediaType          Code = http.StatusUnsupportedMediaType          // RFC 9110, 15.5.16
	CodeUnprocessableEntity           Code = http.StatusUnprocessableEntity           // RFC 9110, 15.5.21
	CodeTooManyRequests               Code = http.StatusTooManyRequests               // RFC 6585, 4
	CodeRequestHeaderFieldsTooLarge   Code = http.StatusRequestHeaderFieldsTooLarge   // RFC 6585, 5
	CodeUnavailableForLegalReasons    Code = http.StatusUnavailableForLegalReasons    // RFC 7725, 3
	CodeInternalServerError           Code = http.StatusInternalServerError           // RFC 9110, 15.6.1
	CodeNotImplemented                Code = http.StatusNotImplemented                // RFC 9110, 15.6.2
	CodeBadGateway                    Code = http.StatusBadGateway                    // RFC 9110, 15.6.3
	CodeServiceUnavailable            Code = http.StatusServiceUnavailable            // RFC 9110, 15.6.4
	CodeGatewayTimeout                Code = http.StatusGatewayTimeout                // RFC 9110, 15.6.5
	CodeNetworkAuthenticationRequired Code = http.StatusNetworkAuthenticationRequired // RFC 6585, 6
)

var (
	// ErrNextCalledTwice is returned when a middleware invokes its continuation more than once.
	ErrNextCalledTwice = errors.New("caffe: next() called multiple times")

	// ErrNonError marks failures that did not originate from an error value, e.g. a panic with a string.
	ErrNonError = errors.New("caffe: non-error thrown")

	// ErrReservedKey is returned when a custom value key would shadow a built-in Context accessor.
	ErrReservedKey = errors.New("caffe: key is reserved by the context")

	// ErrHeadersSent is returned when the response headers can no longer be modified.
	ErrHeadersSent = errors.New("caffe: headers already sent")
)

// Error describes an http error. Errors that are exposed are considered safe to show to the client and are not
// reported by the default error handler.
type Error struct {
	code   Code
	err    error
	expose bool
}

// NewError inits a new error given the error code. Client errors (4xx) are exposed by default.
func NewError(c Code, underlying error) *Error {
	if underlying == nil {
		underlying = errors.New(http.StatusText(int(c)))
	}

	return &Error{code: c, err: underlying, expose: c >= 400 && c < 500}
}

// Expose marks the error as safe to show to the client and returns it.
func (e *Error) Expose() *Error {
	e.expose = true
	return e
}

// Conceal marks the error as not safe to show to the client and returns it.
func (e *Error) Conceal() *Error {
	e.expose = false
	return e
}

func (e *Error) Code() Code { return e.code }
func (e *Error) Exposed() bool { return e.expose }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Status() int { return int(e.code) }
func (e *Error) Message() string { return e.err.Error() }

func (e *Error) Error() string {
	status := http.StatusText(int(e.Code()))
	if status == "" {
		status = "Unknown"
	}

	return fmt.Sprintf("%s: %s", status, e.err.Error())
}

// Format prints the underlying error with its stack trace when formatted with %+v.
func (e *Error) Format(s fmt.State, verb rune) { errors.FormatError(e, s, verb) }

// FormatError implements errors.Formatter.
func (e *Error) FormatError(p errors.Printer) error {
	status := http.StatusText(int(e.Code()))
	if status == "" {
		status = "Unknown"
	}

	p.Print(status)
	return e.err
}

// CodeOf returns the error's status code if it is or wraps an [*Error] and
// [CodeUnknown] otherwise.
func CodeOf(err error) Code {
	if herr, ok := asError(err); ok {
		return herr.Code()
	}
	return CodeUnknown
}

// Exposed reports whether err is or wraps an [*Error] that is marked safe to expose.
func Exposed(err error) bool {
	if herr, ok := asError(err); ok {
		return herr.Exposed()
	}
	return false
}

// asError uses errors.As to unwrap any error and look for a *Error.
func asError(err error) (*Error, bool) {
	var herr *Error
	ok := errors.As(err, &herr)
	return herr, ok
}

// nonError turns a recovered panic value into an error. Error values are kept (with a stack), anything else is
// marked with [ErrNonError] so it can be told apart from ordinary failures.
func nonError(v any) error {
	if err, ok := v.(error); ok {
		return errors.WithStack(err)
	}

	return errors.Mark(errors.Newf("caffe: non-error thrown: %v", v), ErrNonError)
}
