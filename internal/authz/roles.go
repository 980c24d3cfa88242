// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package authz

import (
	"fmt"
	"strings"
)

// Role is an operator role as issued by the backend.
type Role string

const (
	RoleOperator Role = "OPERATOR"
	RoleAdmin    Role = "ADMIN"
	RoleAnalyst  Role = "ANALYST"
)

// Roles lists every known role.
var Roles = []Role{RoleOperator, RoleAdmin, RoleAnalyst}

// ParseRole normalizes s. Unknown values come back as-is with ok false;
// they are denied every action.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return r, false
}

// Action is a gated console action.
type Action string

const (
	ActionAcknowledge     Action = "acknowledge"
	ActionEditNotes       Action = "edit-notes"
	ActionViewNotes       Action = "view-notes"
	ActionExport          Action = "export"
	ActionBulkAcknowledge Action = "bulk-acknowledge"
	ActionBulkExport      Action = "bulk-export"
	ActionBulkAssign      Action = "bulk-assign"
)

// Actions lists every gated action in display order.
var Actions = []Action{
	ActionAcknowledge,
	ActionEditNotes,
	ActionViewNotes,
	ActionExport,
	ActionBulkAcknowledge,
	ActionBulkExport,
	ActionBulkAssign,
}

// ParseAction returns the action named s.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Actions {
		if a == known {
			return a, true
		}
	}
	return a, false
}

// RejectionError is returned when a role may not perform an action. Its
// message is shown to the operator as is.
type RejectionError struct {
	Role   Role
	Action Action
}

func (e *RejectionError) Error() string {
	role := string(e.Role)
	if role == "" {
		role = "unauthenticated"
	}
	switch e.Action {
	case ActionAcknowledge, ActionBulkAcknowledge:
		return fmt.Sprintf("Permission denied: %s cannot acknowledge alerts", role)
	case ActionEditNotes:
		return fmt.Sprintf("Permission denied: %s cannot edit notes", role)
	case ActionViewNotes:
		return fmt.Sprintf("Permission denied: %s cannot view notes", role)
	case ActionExport, ActionBulkExport:
		return fmt.Sprintf("Permission denied: %s cannot export alerts", role)
	case ActionBulkAssign:
		return fmt.Sprintf("Permission denied: %s cannot assign alerts", role)
	default:
		return fmt.Sprintf("Permission denied: %s cannot %s", role, e.Action)
	}
}
