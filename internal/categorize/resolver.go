// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package categorize maps free-text vessel type strings to a display category
// with a fixed color and marker shape.
//
// Resolution is a case-insensitive substring match over keyword groups checked
// in a fixed precedence; the first group with a hit wins:
//
//	tanker/hazardous -> cargo/container/bulk -> passenger/ferry/cruise
//	-> fishing/trawler -> military/patrol -> UNKNOWN
//
// The tanker group is first so that "Chemical/Oil Products Tanker" and
// "Hazardous Cargo" both resolve to TANKER.
package categorize

import "strings"

// Category is a vessel display category.
type Category string

const (
	Tanker    Category = "TANKER"
	Cargo     Category = "CARGO"
	Passenger Category = "PASSENGER"
	Fishing   Category = "FISHING"
	Military  Category = "MILITARY"
	Unknown   Category = "UNKNOWN"
)

// Shape is a marker shape token understood by the map renderer.
type Shape string

const (
	ShapeDiamond  Shape = "diamond"
	ShapeSquare   Shape = "square"
	ShapeCircle   Shape = "circle"
	ShapeTriangle Shape = "triangle"
	ShapeChevron  Shape = "chevron"
	ShapeDot      Shape = "dot"
)

// Style is the resolved rendering style of a vessel.
type Style struct {
	Category Category `json:"category"`
	Color    string   `json:"color"`
	Shape    Shape    `json:"shape"`
}

type rule struct {
	style    Style
	keywords []string
}

// rules is ordered by precedence.
var rules = []rule{
	{Style{Tanker, "#dc2626", ShapeDiamond}, []string{"tanker", "hazardous", "oil", "chemical", "lng", "lpg", "crude"}},
	{Style{Cargo, "#2563eb", ShapeSquare}, []string{"cargo", "container", "bulk", "carrier", "freighter", "ro-ro"}},
	{Style{Passenger, "#16a34a", ShapeCircle}, []string{"passenger", "ferry", "cruise"}},
	{Style{Fishing, "#d97706", ShapeTriangle}, []string{"fishing", "trawler"}},
	{Style{Military, "#475569", ShapeChevron}, []string{"military", "patrol", "navy", "naval", "warship", "coast guard"}},
}

var unknownStyle = Style{Unknown, "#9ca3af", ShapeDot}

// Resolve returns the style for a vessel type string. Empty input is UNKNOWN.
func Resolve(vesselType string) Style {
	t := strings.ToLower(strings.TrimSpace(vesselType))
	if t == "" {
		return unknownStyle
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.style
			}
		}
	}
	return unknownStyle
}

// StyleFor returns the style of a category without resolving a type string.
func StyleFor(c Category) Style {
	for _, r := range rules {
		if r.style.Category == c {
			return r.style
		}
	}
	return unknownStyle
}

// Categories lists every category in precedence order, UNKNOWN last.
func Categories() []Category {
	out := make([]Category, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.style.Category)
	}
	return append(out, Unknown)
}
