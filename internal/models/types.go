// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package models defines the records exchanged with the upstream maritime
// backend and the envelopes Seawatch returns to the operator console.
package models

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// OptionalFloat is a numeric field that may be absent, null, a JSON number,
// or a numeric string. Anything else decodes as absent instead of failing the
// whole payload, so one malformed vessel never blanks the live map.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Float returns a present OptionalFloat.
func Float(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// Ptr returns nil when absent.
func (o OptionalFloat) Ptr() *float64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	*o = OptionalFloat{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil //nolint:nilerr // malformed values degrade to absent
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil //nolint:nilerr // malformed values degrade to absent
	}
	*o = OptionalFloat{Value: v, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler. Absent values encode as null.
func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, o.Value, 'f', -1, 64), nil
}

// FlexString accepts either a JSON string or a JSON number. Upstream ids
// arrive as integers for database surrogates and as strings for MMSI/IMO.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
	default:
		*f = FlexString(string(data))
	}
	return nil
}

func (f FlexString) String() string { return string(f) }
