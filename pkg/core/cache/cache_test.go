package cache

import (
	"errors"
	"testing"
	"time"
)

func TestKeyIsStable(t *testing.T) {
	a := Key("search", "Example Ventures", 10)
	b := Key("search", "Example Ventures", 10)
	if a != b {
		t.Errorf("Identical calls should produce identical keys: %s vs %s", a, b)
	}
	c := Key("search", "Example Ventures", 20)
	if a == c {
		t.Error("Different arguments should produce different keys")
	}
	d := Key("filings", "Example Ventures", 10)
	if a == d {
		t.Error("Different function names should produce different keys")
	}
}

func TestStoreGetSet(t *testing.T) {
	s := New(TTLs{RegionFirms: time.Minute})
	defer s.Stop()

	if _, ok := s.Get(RegionFirms, "k"); ok {
		t.Error("Expected miss on empty cache")
	}
	s.Set(RegionFirms, "k", "value")
	v, ok := s.Get(RegionFirms, "k")
	if !ok || v != "value" {
		t.Errorf("Expected cached value, got %v, %v", v, ok)
	}
}

func TestStoreUnknownRegion(t *testing.T) {
	s := New(TTLs{RegionFirms: time.Minute})
	defer s.Stop()

	// Writes to an unknown region degrade to uncached, never panic.
	s.Set("nope", "k", "value")
	if _, ok := s.Get("nope", "k"); ok {
		t.Error("Unknown region should never hit")
	}
}

func TestStoreExpiry(t *testing.T) {
	s := New(TTLs{RegionRSS: 20 * time.Millisecond})
	defer s.Stop()

	s.Set(RegionRSS, "k", "value")
	time.Sleep(60 * time.Millisecond)
	if _, ok := s.Get(RegionRSS, "k"); ok {
		t.Error("Entry should have expired")
	}
}

func TestDoMemoizes(t *testing.T) {
	s := New(TTLs{RegionFirms: time.Minute})
	defer s.Stop()

	calls := 0
	fetch := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Do(s, RegionFirms, "answer", fetch)
		if err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if v != 42 {
			t.Errorf("Expected 42, got %d", v)
		}
	}
	if calls != 1 {
		t.Errorf("Expected a single fetch, got %d", calls)
	}
}

func TestDoNeverCachesErrors(t *testing.T) {
	s := New(TTLs{RegionFirms: time.Minute})
	defer s.Stop()

	calls := 0
	fetch := func() (int, error) {
		calls++
		return 0, errors.New("transient")
	}

	for i := 0; i < 2; i++ {
		if _, err := Do(s, RegionFirms, "k", fetch); err == nil {
			t.Fatal("Expected error from fetch")
		}
	}
	if calls != 2 {
		t.Errorf("Errors must not be cached; expected 2 fetches, got %d", calls)
	}
}

func TestStats(t *testing.T) {
	s := New(TTLs{RegionFirms: time.Minute})
	defer s.Stop()

	s.Set(RegionFirms, "k", "v")
	s.Get(RegionFirms, "k")
	s.Get(RegionFirms, "missing")

	stats := s.Stats()
	fs := stats[RegionFirms]
	if fs.Entries != 1 {
		t.Errorf("Expected 1 entry, got %d", fs.Entries)
	}
	if fs.Hits != 1 || fs.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d/%d", fs.Hits, fs.Misses)
	}
}
