// Package apperrors defines the application error taxonomy used across the
// authorization, review and spatial packages. Every error carries a stable
// machine-readable code; the Message field is safe to show to end users while
// Detail stays in the logs.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	// KindBusinessLogic covers requests that are well-formed and resolvable but
	// denied by domain rules, e.g. a coordinate outside the served boundary.
	KindBusinessLogic Kind = "business_logic"
	KindDatabase      Kind = "database"
)

// Stable machine codes. Callers and clients key on these, never on messages.
const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeAccessDenied        = "ACCESS_DENIED"
	CodeReviewConflict      = "REVIEW_CONFLICT"
	CodeRecordFinalized     = "RECORD_FINALIZED"
	CodeNotFound            = "NOT_FOUND"
	CodeOutsideBoundary     = "OUTSIDE_SERVICE_BOUNDARY"
	CodeIncompleteAdminData = "INCOMPLETE_ADMIN_DATA"
	CodeDatabaseUnavailable = "DATABASE_ERROR"
)

type Error struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"-"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%s): %s: %s", e.Code, e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind to a response status for the handler layer.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindBusinessLogic:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: message}
}

// AccessDenied deliberately carries a generic user-facing message; the reason
// for the denial must not leak to the caller.
func AccessDenied(detail string) *Error {
	return &Error{Kind: KindAuthorization, Code: CodeAccessDenied, Message: "access denied", Detail: detail}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Code: CodeReviewConflict, Message: message}
}

// Finalized marks a transition attempt on an approved or rejected record.
func Finalized(message string) *Error {
	return &Error{Kind: KindConflict, Code: CodeRecordFinalized, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: message}
}

// OutsideBoundary distinguishes "the point is valid but we do not serve it"
// from a plain lookup miss.
func OutsideBoundary(lat, lng float64) *Error {
	return &Error{
		Kind:    KindBusinessLogic,
		Code:    CodeOutsideBoundary,
		Message: "coordinate is outside the served administrative boundary",
		Detail:  fmt.Sprintf("lat=%f lng=%f", lat, lng),
	}
}

func IncompleteAdminData(detail string) *Error {
	return &Error{
		Kind:    KindBusinessLogic,
		Code:    CodeIncompleteAdminData,
		Message: "administrative boundary data is incomplete for this location",
		Detail:  detail,
	}
}

func Database(op string, err error) *Error {
	return &Error{
		Kind:    KindDatabase,
		Code:    CodeDatabaseUnavailable,
		Message: "storage error",
		Detail:  op,
		Err:     err,
	}
}

// As unwraps err into an *Error, or nil if it is not one.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func IsKind(err error, kind Kind) bool {
	if e := As(err); e != nil {
		return e.Kind == kind
	}
	return false
}

func IsConflict(err error) bool { return IsKind(err, KindConflict) }

func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// Retryable reports whether the caller may retry the failed operation.
// Only transient database errors qualify; conflicts never do.
func Retryable(err error) bool {
	return IsKind(err, KindDatabase)
}
