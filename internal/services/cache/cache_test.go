package cache

import (
	"errors"
	"testing"
	"time"
)

func TestGetCachesWithinTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	s := NewSnapshot[int](30 * time.Second)
	s.SetClock(func() time.Time { return now })

	calls := 0
	fetch := func() (int, error) {
		calls++
		return calls, nil
	}

	if v, _ := s.Get(fetch); v != 1 {
		t.Errorf("Expected 1, got %d", v)
	}

	now = now.Add(29 * time.Second)
	if v, _ := s.Get(fetch); v != 1 {
		t.Errorf("Expected cached 1 within TTL, got %d", v)
	}
	if calls != 1 {
		t.Errorf("Expected 1 fetch, got %d", calls)
	}
}

func TestGetRefetchesAfterTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	s := NewSnapshot[int](30 * time.Second)
	s.SetClock(func() time.Time { return now })

	calls := 0
	fetch := func() (int, error) {
		calls++
		return calls, nil
	}

	s.Get(fetch)
	now = now.Add(31 * time.Second)
	if v, _ := s.Get(fetch); v != 2 {
		t.Errorf("Expected refetch after TTL, got %d", v)
	}
}

func TestInvalidateForcesFetch(t *testing.T) {
	s := NewSnapshot[string](time.Hour)

	calls := 0
	fetch := func() (string, error) {
		calls++
		return "value", nil
	}

	s.Get(fetch)
	s.Invalidate()
	s.Get(fetch)

	if calls != 2 {
		t.Errorf("Expected fetch after invalidate, got %d calls", calls)
	}
}

func TestFetchErrorNotCached(t *testing.T) {
	s := NewSnapshot[int](time.Hour)

	fail := true
	fetch := func() (int, error) {
		if fail {
			return 0, errors.New("boom")
		}
		return 42, nil
	}

	if _, err := s.Get(fetch); err == nil {
		t.Fatal("Expected error from failing fetch")
	}

	fail = false
	v, err := s.Get(fetch)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v != 42 {
		t.Errorf("Expected 42 after recovery, got %d", v)
	}
}
