// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package backend

import (
	"errors"
	"fmt"
	"net/http"
)

type sentinelError struct {
	kind string
	msg  string
}

func (e *sentinelError) Error() string { return e.msg }

// Kind is the metric label for this class of failure.
func (e *sentinelError) Kind() string { return e.kind }

var (
	// ErrUnavailable marks transient upstream failures: 502/503/504,
	// transport errors, and timeouts.
	ErrUnavailable = &sentinelError{kind: "unavailable", msg: "backend unavailable"}

	// ErrDecode marks a response body that could not be decoded.
	ErrDecode = &sentinelError{kind: "decode", msg: "malformed backend response"}

	// ErrCircuitOpen is returned without contacting the backend while a
	// feed's circuit breaker is open.
	ErrCircuitOpen = &sentinelError{kind: "circuit_open", msg: "backend circuit open"}
)

// StatusError is a non-2xx response.
type StatusError struct {
	Endpoint string
	Code     int
	Detail   string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Endpoint, e.Code, e.Detail)
}

// Kind is the metric label for this status class.
func (e *StatusError) Kind() string {
	switch {
	case isUnavailableStatus(e.Code):
		return "unavailable"
	case e.Code >= 500:
		return "server"
	default:
		return "client"
	}
}

// Unwrap lets errors.Is(err, ErrUnavailable) match gateway failures.
func (e *StatusError) Unwrap() error {
	if isUnavailableStatus(e.Code) {
		return ErrUnavailable
	}
	return nil
}

func isUnavailableStatus(code int) bool {
	return code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout
}

// LoginError is a rejected login. Message is safe to show the operator.
type LoginError struct {
	Status  int
	Message string
}

func (e *LoginError) Error() string { return e.Message }

// Kind is the metric label for rejected logins.
func (e *LoginError) Kind() string { return "login" }

// IsUnavailable reports whether err belongs to the transient class.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrCircuitOpen)
}
