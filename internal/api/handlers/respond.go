package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// statusForError returns the HTTP status an error maps to. Unclassified
// errors map to 500.
func statusForError(err error) int {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeQuotaExhausted:
		return http.StatusTooManyRequests
	case apperrors.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWithAppError maps the error taxonomy onto HTTP status codes.
// Unclassified errors never leak their message.
func respondWithAppError(w http.ResponseWriter, err error) {
	status := statusForError(err)

	var appErr *apperrors.AppError
	if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondWithError(w, status, appErr.Message)
}
