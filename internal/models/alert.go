// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package models

import (
	"fmt"
	"strings"
	"time"
)

// Severity is the alert severity level.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ParseSeverity normalizes a severity string. Unknown values map to info.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityWarning:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Rank orders severities for display, critical first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Alert is an alert record as served by GET /alerts/.
// Acknowledgement and notes are owned locally and never read from upstream.
type Alert struct {
	ID         int64     `json:"id"`
	Severity   Severity  `json:"severity"`
	Message    string    `json:"message"`
	VesselName string    `json:"vessel_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// AlertStats is the stats block of the alerts listing.
type AlertStats struct {
	Critical  int     `json:"critical"`
	Warning   int     `json:"warning"`
	Total     int     `json:"total"`
	AvgWait   float64 `json:"avg_wait"`
	WorstPort string  `json:"worst_port"`
}

// Pagination is the paging envelope of the alerts listing.
type Pagination struct {
	Count       int `json:"count"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

// EmptyPagination is the envelope shown when nothing is loaded.
func EmptyPagination(pageSize int) Pagination {
	return Pagination{Count: 0, TotalPages: 1, CurrentPage: 1, PageSize: pageSize}
}

// Normalize fills in the page size and enforces 1 <= current <= total,
// with total == 1 when count is 0.
func (p Pagination) Normalize(pageSize int) Pagination {
	if pageSize > 0 {
		p.PageSize = pageSize
	}
	if p.PageSize <= 0 {
		p.PageSize = 10
	}
	if p.Count < 0 {
		p.Count = 0
	}
	if p.Count == 0 {
		p.TotalPages = 1
	} else if p.TotalPages <= 0 {
		p.TotalPages = (p.Count + p.PageSize - 1) / p.PageSize
	}
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if p.CurrentPage > p.TotalPages {
		p.CurrentPage = p.TotalPages
	}
	return p
}

// Range returns the 1-based visible row range. An empty listing is (0, 0).
func (p Pagination) Range() (start, end int) {
	if p.Count <= 0 || p.PageSize <= 0 {
		return 0, 0
	}
	start = (p.CurrentPage-1)*p.PageSize + 1
	end = min(p.CurrentPage*p.PageSize, p.Count)
	if start > end {
		return 0, 0
	}
	return start, end
}

// Label renders the "Showing S–E of N" row-range label.
func (p Pagination) Label() string {
	start, end := p.Range()
	return fmt.Sprintf("Showing %d–%d of %d", start, end, max(p.Count, 0))
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.CurrentPage > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.CurrentPage < p.TotalPages }

// AlertPage is the full response of GET /alerts/.
type AlertPage struct {
	Results    []Alert    `json:"results"`
	Pagination Pagination `json:"pagination"`
	Stats      AlertStats `json:"stats"`
}

// NewAlert is the payload of POST /alerts/create/.
type NewAlert struct {
	Severity   Severity `json:"severity" validate:"required,oneof=critical warning info"`
	Message    string   `json:"message" validate:"required,min=3,max=1000"`
	VesselName string   `json:"vessel_name,omitempty" validate:"max=200"`
}
