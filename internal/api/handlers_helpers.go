// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/seawatch/internal/alerts"
	"github.com/tomtom215/seawatch/internal/animation"
	"github.com/tomtom215/seawatch/internal/authz"
	"github.com/tomtom215/seawatch/internal/backend"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/triage"
	"github.com/tomtom215/seawatch/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodePermissionDenied = "PERMISSION_DENIED"
	ErrCodeSessionRequired  = "SESSION_REQUIRED"
	ErrCodeLoginFailed      = "LOGIN_FAILED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeNoMotion         = "NO_MOTION"
	ErrCodeEmptySelection   = "EMPTY_SELECTION"
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// maxBodySize caps request bodies. The largest legitimate body is a note.
const maxBodySize = 64 * 1024

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response. Console data is per operator and
// changes every few seconds, so nothing is cacheable.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func envelope(status string, data interface{}) *models.APIResponse {
	return &models.APIResponse{
		Status:   status,
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now()},
	}
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, envelope("success", data))
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondCSV sends an export as a download.
func respondCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write CSV response")
	}
}

// respondFailure maps a domain error to its HTTP answer.
func respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rejection *authz.RejectionError
		verr      *validation.RequestValidationError
		loginErr  *backend.LoginError
		statusErr *backend.StatusError
	)
	switch {
	case errors.As(err, &rejection):
		respondError(w, http.StatusForbidden, ErrCodePermissionDenied, rejection.Error(), nil)
	case errors.As(err, &verr):
		respondValidation(w, verr)
	case errors.Is(err, triage.ErrUnknownSession), errors.Is(err, alerts.ErrClosed):
		respondError(w, http.StatusUnauthorized, ErrCodeSessionRequired, "Sign in to use the triage console", nil)
	case errors.Is(err, triage.ErrEmptySelection):
		respondError(w, http.StatusBadRequest, ErrCodeEmptySelection, "No alerts selected", nil)
	case errors.Is(err, triage.ErrUnknownBulkAction):
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
	case errors.As(err, &loginErr):
		respondError(w, http.StatusUnauthorized, ErrCodeLoginFailed, loginErr.Message, nil)
	case errors.Is(err, animation.ErrUnknownVessel):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Vessel is not on the live map", nil)
	case errors.Is(err, animation.ErrNoMotion):
		respondError(w, http.StatusUnprocessableEntity, ErrCodeNoMotion, "Vessel reports no speed or course", nil)
	case backend.IsUnavailable(err):
		respondError(w, http.StatusServiceUnavailable, ErrCodeUpstream, "Maritime backend unavailable, try again shortly", err)
	case errors.As(err, &statusErr) && (statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden):
		respondError(w, http.StatusForbidden, ErrCodePermissionDenied, "Permission denied by the maritime backend", nil)
	case errors.As(err, &statusErr):
		respondError(w, http.StatusBadGateway, ErrCodeUpstream, "Maritime backend rejected the request", err)
	case errors.Is(err, backend.ErrDecode):
		respondError(w, http.StatusBadGateway, ErrCodeUpstream, "Maritime backend sent a malformed response", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, ErrCodeUpstream, "Request cancelled", nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", sanitizeLogValue(r.URL.Path)).Msg("Unhandled API failure")
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal error", nil)
	}
}

func respondValidation(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes, or the validation error otherwise.
func validateRequest(v interface{}) *validation.RequestValidationError {
	return validation.ValidateStruct(v)
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", nil)
		return false
	}
	return true
}

// alertIDParam parses the {id} path parameter.
func alertIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Alert id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

// parseIDList parses a comma-separated list of alert ids. Blank entries
// are skipped.
func parseIDList(value string) ([]int64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		id, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid alert id %q", trimmed)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
