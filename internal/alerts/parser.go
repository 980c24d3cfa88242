// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package alerts

import (
	"regexp"
	"strconv"
	"time"
)

// Thresholds above which a parsed alert is flagged high risk.
const (
	HighRiskCongestionPct = 90.0
	HighRiskWaitHours     = 48.0
)

var (
	portPattern       = regexp.MustCompile(`(?i)port of (.+?) congestion`)
	congestionPattern = regexp.MustCompile(`(?i)\bat (\d+(?:\.\d+)?)\s*%`)
	waitPattern       = regexp.MustCompile(`(?i)wait time (\d+(?:\.\d+)?)\s*h`)
	anyPercentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
)

// MessageKind tags a parsed alert message.
type MessageKind string

const (
	KindStructured   MessageKind = "structured"
	KindUnstructured MessageKind = "unstructured"
)

// Structured is a fully parsed port congestion message.
type Structured struct {
	Port          string
	CongestionPct float64
	WaitHours     float64
}

// Parsed is the result of ParseMessage. When Kind is KindStructured every
// field is set. Otherwise each field is set only if its own pattern
// matched; an unset field means "not in the message", never zero.
type Parsed struct {
	Kind          MessageKind `json:"kind"`
	Port          *string     `json:"port,omitempty"`
	CongestionPct *float64    `json:"congestion_pct,omitempty"`
	WaitHours     *float64    `json:"wait_hours,omitempty"`
}

// ParseMessage extracts the port, congestion percentage and wait time from
// messages such as "Port of Rotterdam congestion at 93%. Wait time 50h".
func ParseMessage(msg string) Parsed {
	var p Parsed
	if m := portPattern.FindStringSubmatch(msg); m != nil {
		port := m[1]
		p.Port = &port
	}
	if m := congestionPattern.FindStringSubmatch(msg); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.CongestionPct = &v
		}
	}
	if m := waitPattern.FindStringSubmatch(msg); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.WaitHours = &v
		}
	}

	p.Kind = KindUnstructured
	if p.Port != nil && p.CongestionPct != nil && p.WaitHours != nil {
		p.Kind = KindStructured
	}
	return p
}

// Structured returns the structured record when every field matched.
func (p Parsed) Structured() (Structured, bool) {
	if p.Kind != KindStructured {
		return Structured{}, false
	}
	return Structured{Port: *p.Port, CongestionPct: *p.CongestionPct, WaitHours: *p.WaitHours}, true
}

// HighRiskCongestion reports a congestion percentage above 90.
func (p Parsed) HighRiskCongestion() bool {
	return p.CongestionPct != nil && *p.CongestionPct > HighRiskCongestionPct
}

// HighRiskWait reports a wait time above 48 hours.
func (p Parsed) HighRiskWait() bool {
	return p.WaitHours != nil && *p.WaitHours > HighRiskWaitHours
}

// congestionValue is the sort key for SortCongestion: the parsed percentage,
// else the first percentage anywhere in the text, else 0.
func congestionValue(msg string) float64 {
	if p := ParseMessage(msg); p.CongestionPct != nil {
		return *p.CongestionPct
	}
	if m := anyPercentPattern.FindStringSubmatch(msg); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v
		}
	}
	return 0
}

// IsRecent reports whether ts falls on the same calendar day as now, in
// now's location.
func IsRecent(ts, now time.Time) bool {
	if ts.IsZero() {
		return false
	}
	ty, tm, td := ts.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}
