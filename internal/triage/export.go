// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package triage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/seawatch/internal/alerts"
	"github.com/tomtom215/seawatch/internal/models"
)

var exportHeader = []string{
	"id", "severity", "vessel_name", "message", "timestamp",
	"port", "congestion_pct", "wait_hours", "acknowledged",
}

// writeCSV renders rows as CSV. The note column is present only when notes
// is non-nil.
func writeCSV(rows []models.Alert, acked map[int64]bool, notes map[int64]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := exportHeader
	if notes != nil {
		header = append(append([]string{}, exportHeader...), "note")
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, a := range rows {
		p := alerts.ParseMessage(a.Message)
		record := []string{
			strconv.FormatInt(a.ID, 10),
			string(a.Severity),
			a.VesselName,
			a.Message,
			formatTime(a.Timestamp),
			optionalString(p.Port),
			optionalFloat(p.CongestionPct),
			optionalFloat(p.WaitHours),
			strconv.FormatBool(acked[a.ID]),
		}
		if notes != nil {
			record = append(record, notes[a.ID])
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", a.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
