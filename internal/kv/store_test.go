// Seawatch - Maritime Live Operations and Alert Triage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package kv

import (
	"context"
	"errors"
	"testing"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	disk, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { disk.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"badger": disk,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
			}
			if err := s.Set(ctx, "k", []byte("one")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set(ctx, "k", []byte("two")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := s.Get(ctx, "k")
			if err != nil || string(got) != "two" {
				t.Errorf("Get(k) = %q, %v; want two", got, err)
			}
			if err := s.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := s.Delete(ctx, "k"); err != nil {
				t.Errorf("second Delete: %v", err)
			}
			if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after Delete err = %v", err)
			}
		})
	}
}

func TestBadgerSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	if err := SetJSON(ctx, first, "ackedAlerts", []int64{42}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	var ids []int64
	if err := GetJSON(ctx, second, "ackedAlerts", &ids); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if len(ids) != 1 || ids[0] != 42 {
		t.Errorf("ids = %v, want [42]", ids)
	}
}

func TestBadgerGCWithNothingToRewrite(t *testing.T) {
	b, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	defer b.Close()
	if err := b.RunGC(0.5); err != nil {
		t.Errorf("RunGC on a fresh store = %v", err)
	}
}

func TestWithPrefixIsolates(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	alice := WithPrefix(base, "alice")
	bob := WithPrefix(base, "bob")

	if err := alice.Set(ctx, "alertNotes", []byte(`{"1":"a"}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := bob.Get(ctx, "alertNotes"); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob sees alice's key: %v", err)
	}
	if _, err := base.Get(ctx, "alice:alertNotes"); err != nil {
		t.Errorf("prefixed key missing from base: %v", err)
	}
	if err := alice.Close(); err != nil {
		t.Errorf("Close on view: %v", err)
	}
	if _, err := base.Get(ctx, "alice:alertNotes"); err != nil {
		t.Errorf("closing the view closed the base: %v", err)
	}
}

func TestGetJSONCorrupt(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	s.Set(ctx, "alertNotes", []byte("{not json"))

	var notes map[string]string
	err := GetJSON(ctx, s, "alertNotes", &notes)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("GetJSON(corrupt) err = %v, want decode error", err)
	}
}
