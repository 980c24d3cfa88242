// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package alerts

import (
	"fmt"
	"strings"

	"github.com/tomtom215/seawatch/internal/backend"
	"github.com/tomtom215/seawatch/internal/validation"
)

// SeverityFilter restricts the listing to one severity, or all.
type SeverityFilter string

const (
	FilterAll      SeverityFilter = "all"
	FilterCritical SeverityFilter = "critical"
	FilterWarning  SeverityFilter = "warning"
	FilterInfo     SeverityFilter = "info"
)

// SortMode orders the listing. Only SortCongestion is applied locally; the
// backend owns every other ordering.
type SortMode string

const (
	SortNewest     SortMode = "newest"
	SortSeverity   SortMode = "severity"
	SortCongestion SortMode = "congestion"
)

// Query is the full set of listing parameters.
type Query struct {
	Search   string         `json:"search" validate:"max=200"`
	Severity SeverityFilter `json:"severity" validate:"oneof=all critical warning info"`
	Sort     SortMode       `json:"sort" validate:"oneof=newest severity congestion"`
	Page     int            `json:"page" validate:"min=1"`
	PageSize int            `json:"page_size" validate:"pagesize"`
}

// DefaultQuery is the first page of everything, newest first.
func DefaultQuery(pageSize int) Query {
	return Query{Severity: FilterAll, Sort: SortNewest, Page: 1, PageSize: pageSize}
}

// Validate checks every field.
func (q Query) Validate() error {
	if err := validation.ValidateStruct(&q); err != nil {
		return err
	}
	return nil
}

// Signature is a stable string of every field, used in logs and to tell
// queries apart.
func (q Query) Signature() string {
	return fmt.Sprintf("search=%q&severity=%s&sort=%s&page=%d&page_size=%d",
		strings.TrimSpace(q.Search), q.Severity, q.Sort, q.Page, q.PageSize)
}

// Backend converts q into the upstream request parameters.
func (q Query) Backend() backend.AlertQuery {
	return backend.AlertQuery{
		Page:     q.Page,
		PageSize: q.PageSize,
		Severity: string(q.Severity),
		Search:   strings.TrimSpace(q.Search),
	}
}
