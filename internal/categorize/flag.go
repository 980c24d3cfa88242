// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package categorize

import (
	"strings"

	"github.com/biter777/countries"
)

// FlagState normalizes a flag field (ISO alpha-2, alpha-3, or a country name)
// to the country's English name. Unrecognized input is returned trimmed.
func FlagState(flag string) string {
	f := strings.TrimSpace(flag)
	if f == "" {
		return ""
	}

	var c countries.CountryCode
	switch len(f) {
	case 2, 3:
		c = countries.ByName(strings.ToUpper(f))
	default:
		c = countries.ByName(f)
	}
	if c == countries.Unknown {
		return f
	}
	return c.String()
}
