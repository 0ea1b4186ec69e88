// Package response owns the transport-side error surface: typed errors with
// an HTTP status and a JSON body, and the single mapping from service errors
// onto them.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const GeneralErrorKey = "general"

// Error codes attached to validation failures.
const (
	MissedValue             = "missed_value"
	InvalidValue            = "invalid_value"
	InvalidRequestStructure = "invalid_request_structure"
)

type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error is a transport error ready to be written to the client.
type Error interface {
	error
	StatusCode() int
	Body() gin.H
}

// HandleError writes the error and aborts the request.
func HandleError(err Error, c *gin.Context) {
	c.AbortWithStatusJSON(err.StatusCode(), err.Body())
}

// ValidationError reports malformed input per field.
type ValidationError struct {
	status int
	Errors map[string]ErrorMessage
}

// NewValidationError builds a 422 validation error from optional field maps.
func NewValidationError(errs ...map[string]ErrorMessage) *ValidationError {
	merged := make(map[string]ErrorMessage)
	for _, m := range errs {
		for field, msg := range m {
			merged[field] = msg
		}
	}
	return &ValidationError{status: http.StatusUnprocessableEntity, Errors: merged}
}

// NewBadRequestError is the 400 variant used for malformed identifiers and
// auth-input failures.
func NewBadRequestError(message string) *ValidationError {
	ve := &ValidationError{status: http.StatusBadRequest, Errors: make(map[string]ErrorMessage)}
	ve.SetError(GeneralErrorKey, InvalidValue, message)
	return ve
}

func (e *ValidationError) SetError(field, code, message string) {
	e.Errors[field] = ErrorMessage{Code: code, Message: message}
}

func (e *ValidationError) Error() string   { return "validation error" }
func (e *ValidationError) StatusCode() int { return e.status }
func (e *ValidationError) Body() gin.H {
	return gin.H{"success": false, "errors": e.Errors}
}

// statusError covers the single-message taxonomy entries.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string   { return e.message }
func (e *statusError) StatusCode() int { return e.status }
func (e *statusError) Body() gin.H {
	return gin.H{"success": false, "message": e.message}
}

// NewInvalidCredentialsError keeps login failures uniform so callers cannot
// tell which field was wrong.
func NewInvalidCredentialsError() Error {
	return &statusError{status: http.StatusUnauthorized, message: "invalid email or password"}
}

func NewUnauthorizedError() Error {
	return &statusError{status: http.StatusUnauthorized, message: "could not validate credentials"}
}

func NewForbiddenError() Error {
	return &statusError{status: http.StatusForbidden, message: "access denied"}
}

func NewNotFoundError(message string) Error {
	if message == "" {
		message = "not found"
	}
	return &statusError{status: http.StatusNotFound, message: message}
}

func NewConflictError(message string) Error {
	return &statusError{status: http.StatusConflict, message: message}
}

func NewUserExistError() Error {
	return NewConflictError("an account with this email already exists")
}

func NewInternalError() Error {
	return &statusError{status: http.StatusInternalServerError, message: "internal server error"}
}
