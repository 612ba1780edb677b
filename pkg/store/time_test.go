package store

import (
	"testing"
	"time"
)

func TestMillisRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 123_000_000, time.UTC)

	if got := FromMillis(Millis(now)); !got.Equal(now) {
		t.Fatalf("expected %v, got %v", now, got)
	}
	if OptionalMillis(nil) != nil || OptionalTime(nil) != nil {
		t.Fatal("expected nil for absent values")
	}
	ms := OptionalMillis(&now)
	if got := OptionalTime(ms); got == nil || !got.Equal(now) {
		t.Fatalf("expected %v, got %v", now, got)
	}
}
