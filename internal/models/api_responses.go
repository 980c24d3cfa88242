// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package models

import "time"

// APIResponse is the envelope for every JSON response of the Seawatch API.
//
//	{"status":"success","data":{...},"metadata":{"timestamp":"..."}}
//	{"status":"error","error":{"code":"PERMISSION_DENIED","message":"..."}}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata accompanies every response.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError carries a machine-readable code and a human-readable message.
//
// Codes used:
//   - VALIDATION_ERROR: invalid input
//   - PERMISSION_DENIED: the current role lacks the capability
//   - SESSION_REQUIRED: missing or unknown X-Session-ID
//   - LOGIN_FAILED: upstream rejected the credentials
//   - UPSTREAM_ERROR: the maritime backend failed
//   - NOT_FOUND: unknown resource
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Credentials is the body of a login request.
type Credentials struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=256"`
}

// LoginResult is the upstream success payload of POST /login/.
type LoginResult struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Role     string `json:"role"`
	Username string `json:"username"`
}
