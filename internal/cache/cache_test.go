package cache

import (
	"strings"
	"testing"
	"time"
)

func TestNewKey(t *testing.T) {
	t.Parallel()
	a := NewKey("http://den:32400", "token-a", "/library/sections/1/all")
	b := NewKey("http://den:32400", "token-b", "/library/sections/1/all")

	if a == b {
		t.Fatal("Expected keys for different tokens to differ")
	}
	if a != NewKey("http://den:32400", "token-a", "/library/sections/1/all") {
		t.Fatal("Expected NewKey to be deterministic")
	}
	if strings.Contains(a.String(), "token-a") {
		t.Errorf("Key %q must not contain the token", a.String())
	}
	if len(a.Fingerprint) != 16 {
		t.Errorf("Fingerprint length = %d, want 16", len(a.Fingerprint))
	}
}

func TestKey_Kind(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		want Kind
	}{
		{"/", KindIdentity},
		{"/library/sections/1/all", KindSection},
		{"/library/sections/12/all", KindSection},
		{"/library/sections", KindOther},
		{"/library/metadata/5", KindOther},
	}
	for _, tt := range tests {
		if got := NewKey("http://den:32400", "t", tt.path).Kind(); got != tt.want {
			t.Errorf("Kind(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestParseKey(t *testing.T) {
	t.Parallel()
	key := NewKey("http://odd|host:32400", "t", "/library/sections/2/all")
	got, ok := parseKey(key.String())
	if !ok {
		t.Fatalf("parseKey(%q) failed", key.String())
	}
	if got != key {
		t.Errorf("parseKey = %+v, want %+v", got, key)
	}

	if _, ok := parseKey("no-separators"); ok {
		t.Error("Expected parseKey to reject a member without separators")
	}
	if _, ok := parseKey("one|separator"); ok {
		t.Error("Expected parseKey to reject a member with one separator")
	}
}

func TestDocument_Age(t *testing.T) {
	t.Parallel()
	fetched := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := Document{FetchedAt: fetched}

	if got := doc.Age(fetched.Add(90 * time.Second)); got != 90*time.Second {
		t.Errorf("Age = %v, want 90s", got)
	}
	if got := doc.Age(fetched.Add(-time.Second)); got != 0 {
		t.Errorf("Age before fetch = %v, want 0", got)
	}
	if got := (Document{}).Age(fetched); got != 0 {
		t.Errorf("Age of unstamped document = %v, want 0", got)
	}
}
