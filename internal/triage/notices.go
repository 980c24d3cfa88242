// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package triage

import (
	"sync"
	"time"
)

// NoticeKind classifies a notice for display.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeDenied  NoticeKind = "denied"
	NoticeError   NoticeKind = "error"
)

// DefaultNoticeLimit is how many notices a console keeps.
const DefaultNoticeLimit = 20

// Notice is a short user-facing message such as a confirmation or a
// permission rejection.
type Notice struct {
	At      time.Time  `json:"at"`
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// noticeRing keeps the most recent notices, oldest first.
type noticeRing struct {
	mu    sync.Mutex
	limit int
	items []Notice
}

func newNoticeRing(limit int) *noticeRing {
	if limit <= 0 {
		limit = DefaultNoticeLimit
	}
	return &noticeRing{limit: limit}
}

func (r *noticeRing) add(kind NoticeKind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notice{At: time.Now().UTC(), Kind: kind, Message: msg})
	if over := len(r.items) - r.limit; over > 0 {
		r.items = append(r.items[:0], r.items[over:]...)
	}
}

func (r *noticeRing) list() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.items))
	copy(out, r.items)
	return out
}
