package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	// ErrorTypeExternal is a non-2xx answer from the remote API.
	ErrorTypeExternal ErrorType = "EXTERNAL_ERROR"
	// ErrorTypeNetwork means the request never produced a response.
	ErrorTypeNetwork ErrorType = "NETWORK_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"

	ErrCodeTimesheetNotFound      ErrorCode = "TIMESHEET_NOT_FOUND"
	ErrCodeTimesheetNotEditable   ErrorCode = "TIMESHEET_NOT_EDITABLE"
	ErrCodeTimesheetNotReviewable ErrorCode = "TIMESHEET_NOT_REVIEWABLE"
	ErrCodeEmployeeNotFound       ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeEmailTaken             ErrorCode = "EMAIL_TAKEN"
	ErrCodeUnauthorizedAccess     ErrorCode = "UNAUTHORIZED_ACCESS"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeLoginFailed        ErrorCode = "LOGIN_FAILED"
	ErrCodeRegistrationFailed ErrorCode = "REGISTRATION_FAILED"
	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeRequestFailed      ErrorCode = "REQUEST_FAILED"
	ErrCodeNetworkFailure     ErrorCode = "NETWORK_FAILURE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		// a wrapped AppError whose message was adopted is not repeated
		var inner *AppError
		if errors.As(e.Cause, &inner) && inner.GetDetailedMessage() == e.GetDetailedMessage() {
			return e.Message
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewNetworkError reports a request that never reached the server or got no response.
func NewNetworkError(cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeNetwork,
		Code:    ErrCodeNetworkFailure,
		Message: "request failed before a response was received",
		Cause:   cause,
	}
}

// NewServerRejection reports a non-2xx response. message is the server's own
// message when it sent one.
func NewServerRejection(statusCode int, message string) *AppError {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodeRequestFailed,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap re-labels err with code while keeping the type, status and message of an
// underlying AppError. fallback is used when err carries no message of its own.
func Wrap(code ErrorCode, fallback string, err error) *AppError {
	wrapped := &AppError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: fallback,
		Cause:   err,
	}
	if cause, ok := IsAppError(err); ok {
		wrapped.Type = cause.Type
		wrapped.StatusCode = cause.StatusCode
		wrapped.Details = cause.Details
		if msg := cause.GetDetailedMessage(); msg != "" && cause.Type != ErrorTypeNetwork {
			wrapped.Message = msg
		}
	}
	return wrapped
}

var (
	ErrTimesheetNotFound      = NewNotFoundError("Timesheet not found", ErrCodeTimesheetNotFound)
	ErrTimesheetNotEditable   = NewValidationError("Only pending or rejected timesheets can be edited", ErrCodeTimesheetNotEditable)
	ErrTimesheetNotReviewable = NewValidationError("Only pending timesheets can be reviewed", ErrCodeTimesheetNotReviewable)
	ErrEmployeeNotFound       = NewNotFoundError("Employee not found", ErrCodeEmployeeNotFound)
	ErrEmailTaken             = NewConflictError("Email is already registered", ErrCodeEmailTaken)
	ErrUnauthorizedAccess     = NewForbiddenError("Access denied", ErrCodeUnauthorizedAccess)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrNotAuthenticated   = NewUnauthorizedError("Not logged in", ErrCodeNotAuthenticated)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether any AppError in err's chain has type t.
func IsType(err error, t ErrorType) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == t {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsCode reports whether any AppError in err's chain, or any of its field
// errors, has code c.
func IsCode(err error, c ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == c {
			return true
		}
		if details, ok := appErr.Details.(ValidationErrors); ok {
			for _, fe := range details.Errors {
				if fe.Code == string(c) {
					return true
				}
			}
		}
		err = appErr.Cause
	}
	return false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
