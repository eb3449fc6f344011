package errcodes

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
	// Detail is diagnostic text that is only exposed to clients when the
	// handler is configured to do so.
	Detail string
	// Extra holds public fields merged into the error payload.
	Extra map[string]interface{}
	Cause error
}

func (err *Error) Error() string {
	if err.Cause != nil {
		return err.Message + ": " + err.Cause.Error()
	}
	return err.Message
}

func (err *Error) Unwrap() error {
	return err.Cause
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	*te = *err
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

const (
	CodeMissingField       = "missing_field"
	CodeInvalidYear        = "invalid_year"
	CodeDuplicateIsbn      = "duplicate_isbn"
	CodeValidationRejected = "validation_rejected"
	CodeNotFound           = "not_found"
	CodePersistenceFailed  = "persistence_failed"
	CodeRouteNotFound      = "route_not_found"
)

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Message:  resource + " not found.",
		Code:     CodeNotFound,
	}
}

// RouteNotFound returns a 404 error that echoes the requested URL back.
func RouteNotFound(requestedURL string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Message:  "Route not found",
		Code:     CodeRouteNotFound,
		Extra:    map[string]interface{}{"requested_url": requestedURL},
	}
}

// MissingField is returned when a required book field is absent or blank.
func MissingField(field string) error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "All fields are required (title, author, isbn, year)",
		Code:     CodeMissingField,
		Extra:    map[string]interface{}{"field": field},
	}
}

// InvalidYear is returned when the year isn't an integer within [min, max].
func InvalidYear(min, max int) error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  fmt.Sprintf("Year must be a whole number between %d and %d", min, max),
		Code:     CodeInvalidYear,
		Extra:    map[string]interface{}{"field": "year"},
	}
}

// DuplicateIsbn is returned when a book with the same ISBN already exists.
func DuplicateIsbn(isbn string) error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  fmt.Sprintf("A book with this ISBN (%s) already exists", isbn),
		Code:     CodeDuplicateIsbn,
		Extra:    map[string]interface{}{"isbn": isbn},
	}
}

// ValidationRejected is returned when the store itself rejects a record.
// The store's user-facing message becomes the error message.
func ValidationRejected(msg string, cause error) error {
	e := &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  msg,
		Code:     CodeValidationRejected,
		Cause:    cause,
	}
	if cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

// PersistenceFailed is a generic store failure. The cause is kept for logging
// and only surfaces to clients as Detail.
func PersistenceFailed(msg string, cause error) error {
	e := &Error{
		HTTPCode: http.StatusInternalServerError,
		Message:  msg,
		Code:     CodePersistenceFailed,
		Cause:    cause,
	}
	if cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

func UnsupportedMediaType() error {
	return &Error{
		HTTPCode: http.StatusUnsupportedMediaType,
		Message:  "Unsupported Media Type",
		Code:     "unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  fmt.Sprintf("Unknown Parameter %q", param),
		Code:     "unknown_parameter",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_type_error",
	}
}

func ValidationError(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_error",
	}
}

func MalformedPayload() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Malformed Payload",
		Code:     "malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Request body can't be empty.",
		Code:     "empty_request_body",
	}
}
