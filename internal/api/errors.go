package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schalkje/DiagramDesigner/internal/service"
	"github.com/schalkje/DiagramDesigner/internal/validation"
)

// Error kinds used as the "error" member of every error body.
const (
	KindValidation     = string(service.KindValidation)
	KindAuthentication = string(service.KindUnauthenticated)
	KindNotFound       = string(service.KindNotFound)
	KindConfirmation   = string(service.KindConfirmationRequired)
	KindInternal       = "internal_error"
)

// APIError represents a structured API error with HTTP status code.
type APIError struct {
	Code        int               `json:"-"`
	Kind        string            `json:"error"`
	Message     string            `json:"message"`
	Details     string            `json:"details,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// ConfirmationResponse is the 409 body of an unconfirmed cascading delete.
type ConfirmationResponse struct {
	Kind string `json:"error"`
	service.DeleteImpact
}

// NewAPIError creates a new API error.
func NewAPIError(code int, kind, message, details string) *APIError {
	return &APIError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Details: details,
	}
}

// Common error constructors
func BadRequestError(message, details string) *APIError {
	return NewAPIError(http.StatusBadRequest, KindValidation, message, details)
}

func NotFoundError(message string) *APIError {
	return NewAPIError(http.StatusNotFound, KindNotFound, message, "")
}

func InternalError(message, details string) *APIError {
	return NewAPIError(http.StatusInternalServerError, KindInternal, message, details)
}

// HTTPErrorHandler is a custom error handler for Echo. It is the only place
// errors are turned into responses.
func HTTPErrorHandler(err error, c echo.Context) {
	// Don't send response if already sent
	if c.Response().Committed {
		return
	}

	var svcErr *service.Error
	if errors.As(err, &svcErr) && svcErr.Kind == service.KindConfirmationRequired && svcErr.Impact != nil {
		body := ConfirmationResponse{Kind: KindConfirmation, DeleteImpact: *svcErr.Impact}
		body.RequiresConfirmation = true
		if err := c.JSON(http.StatusConflict, body); err != nil {
			c.Logger().Error(err)
		}
		return
	}

	apiErr := toAPIError(err)

	if apiErr.Code >= http.StatusInternalServerError {
		logger(c).Error().Err(err).Msg("request failed")
		// Don't expose internal errors in production
		if !c.Echo().Debug {
			apiErr.Details = ""
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(apiErr.Code)
	} else {
		err = c.JSON(apiErr.Code, apiErr)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func toAPIError(err error) *APIError {
	var (
		apiErr  *APIError
		svcErr  *service.Error
		httpErr *echo.HTTPError
		valRes  *validation.ValidationResult
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &svcErr):
		return &APIError{
			Code:        statusOf(svcErr.Kind),
			Kind:        string(svcErr.Kind),
			Message:     svcErr.Message,
			FieldErrors: svcErr.Fields,
		}
	case errors.As(err, &valRes):
		msg := "Validation failed"
		if len(valRes.Errors) > 0 {
			msg = valRes.Errors[0].Message
		}
		return &APIError{
			Code:        http.StatusBadRequest,
			Kind:        KindValidation,
			Message:     msg,
			FieldErrors: valRes.Fields(),
		}
	case errors.As(err, &httpErr):
		return &APIError{
			Code:    httpErr.Code,
			Kind:    kindOf(httpErr.Code),
			Message: httpMessage(httpErr),
		}
	}
	return &APIError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: "Internal server error",
		Details: err.Error(),
	}
}

func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConfirmationRequired:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func kindOf(code int) string {
	switch {
	case code == http.StatusUnauthorized:
		return KindAuthentication
	case code == http.StatusNotFound:
		return KindNotFound
	case code >= http.StatusInternalServerError:
		return KindInternal
	}
	return KindValidation
}

// httpMessage prefers the message echo or a middleware set, falling back to
// a user-friendly text for the status code.
func httpMessage(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok && msg != "" {
		return msg
	}

	messages := map[int]string{
		http.StatusBadRequest:          "Bad request",
		http.StatusUnauthorized:        "Unauthorized",
		http.StatusForbidden:           "Forbidden",
		http.StatusNotFound:            "Resource not found",
		http.StatusMethodNotAllowed:    "Method not allowed",
		http.StatusTooManyRequests:     "Too many requests",
		http.StatusInternalServerError: "Internal server error",
		http.StatusServiceUnavailable:  "Service unavailable",
	}
	if msg, ok := messages[he.Code]; ok {
		return msg
	}
	return http.StatusText(he.Code)
}
