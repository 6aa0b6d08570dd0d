// Package handlers provides HTTP handlers for the JSON API
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/mealsmith/v2/pkg/errors"
)

// APIResponse represents a standard API response envelope. Details carries
// the structured error (code, metadata, request id) alongside the plain
// Error message.
type APIResponse struct {
	Success bool                    `json:"success"`
	Data    interface{}             `json:"data,omitempty"`
	Error   string                  `json:"error,omitempty"`
	Details *apperrors.ErrorDetails `json:"details,omitempty"`
	Message string                  `json:"message,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeData writes a success envelope around the payload
func writeData(logger *zap.Logger, w http.ResponseWriter, status int, data interface{}) {
	writeJSON(logger, w, status, APIResponse{Success: true, Data: data})
}

// writeErrorJSON writes a failure envelope with the given message
func writeErrorJSON(logger *zap.Logger, w http.ResponseWriter, status int, message string) {
	writeJSON(logger, w, status, APIResponse{Success: false, Error: message})
}

// writeError maps an application error onto its HTTP status and attaches
// the structured error details. Unknown error types become an opaque 500;
// server-side failures are logged here so handlers do not have to.
func writeError(logger *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Error("Unhandled error reached the API boundary", zap.Error(err))
		appErr = apperrors.NewInternalError("Internal server error")
	}

	status := appErr.StatusCode()
	if status >= 500 {
		logger.Error("Request failed",
			zap.String("code", string(appErr.Code)),
			zap.String("message", appErr.Message),
			zap.Error(appErr.Unwrap()),
		)
	}

	resp := apperrors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context()))
	writeJSON(logger, w, status, APIResponse{
		Success: false,
		Error:   userMessage(appErr),
		Details: &resp.Error,
	})
}

// userMessage picks the text shown in the envelope's error field. Validation
// and generation failures surface the specific reason rather than the
// generic header.
func userMessage(appErr *apperrors.AppError) string {
	switch appErr.Code {
	case apperrors.CodeValidationFailed, apperrors.CodeGenerationFailed:
		if appErr.Details != "" {
			return appErr.Details
		}
	}
	return appErr.Message
}

// NotFound answers requests for routes that do not exist with the standard
// error envelope instead of chi's plain-text default.
func NotFound(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(logger, w, r, apperrors.NewNotFoundError(""))
	}
}

// validationErrors converts validator failures into field-level validation
// errors carrying the same user-facing wording the domain uses for the
// equivalent rule
func validationErrors(err error) *apperrors.AppError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return apperrors.NewValidationError("Invalid request")
	}

	fields := make([]apperrors.ValidationError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, apperrors.ValidationError{
			Field:   fe.Field(),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return apperrors.NewValidationErrors(fields)
}

// fieldMessage maps one validator failure onto its user-facing wording
func fieldMessage(fe validator.FieldError) string {
	switch {
	case fe.Field() == "Ingredients" && fe.Tag() == "required":
		return "Please enter some ingredients first"
	case fe.Field() == "Username" && fe.Tag() == "required":
		return "Please enter a username"
	case fe.Field() == "Username" && fe.Tag() == "max":
		return "Username must be 64 characters or fewer"
	default:
		return fmt.Sprintf("Invalid value for %s", fe.Field())
	}
}
