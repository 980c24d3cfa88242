// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package validation

import (
	"errors"
	"strings"
	"testing"
)

type queryUpdate struct {
	Search   string `json:"search" validate:"max=200"`
	Severity string `json:"severity" validate:"omitempty,oneof=all critical warning info"`
	PageSize int    `json:"page_size" validate:"omitempty,pagesize"`
}

type noteEdit struct {
	Text string `json:"text" validate:"max=2000"`
}

type broadcast struct {
	Message string `json:"message" validate:"required,notblank,min=3"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

func TestValidateStruct_PageSize(t *testing.T) {
	for _, size := range []int{10, 25, 50} {
		if err := ValidateStruct(&queryUpdate{PageSize: size}); err != nil {
			t.Errorf("page size %d rejected: %v", size, err)
		}
	}

	err := ValidateStruct(&queryUpdate{PageSize: 20})
	if err == nil {
		t.Fatal("page size 20 accepted")
	}
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details["field"] != "page_size" {
		t.Errorf("field = %v, want json name page_size", apiErr.Details["field"])
	}
}

func TestValidateStruct_Oneof(t *testing.T) {
	err := ValidateStruct(&queryUpdate{Severity: "urgent"})
	if err == nil {
		t.Fatal("unknown severity accepted")
	}
	if !strings.Contains(err.Error(), "severity must be one of") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestValidateStruct_NotBlank(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantErr bool
	}{
		{"text", "Port of Rotterdam congestion", false},
		{"spaces", "     ", true},
		{"empty", "", true},
		{"too short", "ab", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&broadcast{Message: tt.message})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&queryUpdate{Search: strings.Repeat("x", 201), PageSize: 7})
	if err == nil {
		t.Fatal("expected errors")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("got %d errors, want 2", len(err.Errors()))
	}
	apiErr := err.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Errorf("multi-error details missing fields: %v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "search must be at most 200 characters") {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestValidateStruct_MaxLength(t *testing.T) {
	if err := ValidateStruct(&noteEdit{Text: ""}); err != nil {
		t.Errorf("empty note rejected: %v", err)
	}
	if err := ValidateStruct(&noteEdit{Text: strings.Repeat("n", 2001)}); err == nil {
		t.Error("oversized note accepted")
	}
}

func TestValidateVar(t *testing.T) {
	if err := ValidateVar("page_size", 25, "pagesize"); err != nil {
		t.Errorf("ValidateVar(25) = %v", err)
	}
	err := ValidateVar("page_size", 0, "pagesize")
	var reqErr *RequestValidationError
	if !errors.As(err, &reqErr) {
		t.Fatalf("ValidateVar(0) = %v, want *RequestValidationError", err)
	}
	if got := reqErr.Error(); got != "page_size must be one of: 10 25 50" {
		t.Errorf("message = %q", got)
	}
	if err := ValidateVar("note", "abcdef", "max=3"); err == nil || err.Error() != "note must be at most 3 characters" {
		t.Errorf("ValidateVar(max=3) = %v", err)
	}
}

func TestToAPIError_OmitsRejectedValue(t *testing.T) {
	err := ValidateStruct(&noteEdit{Text: strings.Repeat("secret ", 400)})
	if err == nil {
		t.Fatal("oversized note accepted")
	}
	fe := err.Errors()[0]
	if fe.Field != "text" || fe.Tag != "max" || fe.Param != "2000" {
		t.Errorf("field error = %+v", fe)
	}
	for k, v := range err.ToAPIError().Details {
		if s, ok := v.(string); ok && strings.Contains(s, "secret") {
			t.Errorf("details[%q] echoes the rejected value", k)
		}
	}
}
