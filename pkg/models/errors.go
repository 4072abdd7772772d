package models

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes returned in the JSON envelope
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrMissionNotFound    = errors.New("mission not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("resource conflict")

	ErrSubmissionLimit   = errors.New("submission limit reached for this mission")
	ErrInvalidTransition = errors.New("invalid submission status transition")
	ErrNotLikeable       = errors.New("only approved submissions can be liked")
	ErrMediaRejected     = errors.New("media upload rejected")
)

// AppError carries a stable code plus the transport status it maps to.
type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Protocol   string                 `json:"protocol,omitempty"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Protocol != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Protocol, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// ToHTTPError converts to the JSON envelope
func (e *AppError) ToHTTPError() *APIResponse {
	return &APIResponse{
		Success:   false,
		Error:     e.Code,
		Message:   e.Message,
		Timestamp: time.Now(),
	}
}

// ToGRPCError converts to a gRPC status error
func (e *AppError) ToGRPCError() error {
	code := codes.Internal
	switch e.Code {
	case ErrCodeNotFound:
		code = codes.NotFound
	case ErrCodeUnauthorized:
		code = codes.Unauthenticated
	case ErrCodeForbidden:
		code = codes.PermissionDenied
	case ErrCodeValidation, ErrCodeBadRequest:
		code = codes.InvalidArgument
	case ErrCodeServiceUnavailable:
		code = codes.Unavailable
	}
	return status.Error(code, e.Message)
}

// ToWebSocketError returns a close code and reason
func (e *AppError) ToWebSocketError() (int, string) {
	switch e.Code {
	case ErrCodeUnauthorized, ErrCodeForbidden:
		return websocket.ClosePolicyViolation, e.Message
	case ErrCodeNotFound:
		return websocket.CloseNormalClosure, e.Message
	default:
		return websocket.CloseInternalServerErr, e.Message
	}
}

func NewHTTPError(code, message string, statusCode int, err error) *AppError {
	appErr := &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Protocol:   "http",
		Err:        err,
	}
	if err != nil {
		appErr.Details = map[string]interface{}{"original_error": err.Error()}
	}
	return appErr
}

// ClassifyError maps domain sentinels onto an AppError.
func ClassifyError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrMissionNotFound),
		errors.Is(err, ErrSubmissionNotFound), errors.Is(err, ErrNotFound):
		return NewHTTPError(ErrCodeNotFound, rootMessage(err), http.StatusNotFound, err)
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrUnauthorized):
		return NewHTTPError(ErrCodeUnauthorized, rootMessage(err), http.StatusUnauthorized, err)
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(ErrCodeForbidden, rootMessage(err), http.StatusForbidden, err)
	case errors.Is(err, ErrEmailExists), errors.Is(err, ErrConflict), errors.Is(err, ErrSubmissionLimit):
		return NewHTTPError(ErrCodeConflict, rootMessage(err), http.StatusConflict, err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrNotLikeable), errors.Is(err, ErrMediaRejected):
		return NewHTTPError(ErrCodeValidation, rootMessage(err), http.StatusBadRequest, err)
	default:
		return NewHTTPError(ErrCodeInternal, "internal server error", http.StatusInternalServerError, err)
	}
}

// rootMessage keeps the full wrapped chain so validation detail reaches the client.
func rootMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
