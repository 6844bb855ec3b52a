package models

import "testing"

func TestParseSameSite(t *testing.T) {
	tests := []struct {
		raw  string
		want SameSite
	}{
		{"Strict", SameSiteStrict},
		{"strict", SameSiteStrict},
		{"LAX", SameSiteLax},
		{"none", SameSiteNone},
		{" Lax ", SameSiteLax},
		{"", SameSiteUnknown},
		{"whatever", SameSiteUnknown},
	}

	for _, tt := range tests {
		if got := ParseSameSite(tt.raw); got != tt.want {
			t.Errorf("ParseSameSite(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestCookie_Key(t *testing.T) {
	a := Cookie{Name: "id", Domain: "a.com"}
	b := Cookie{Name: "id", Domain: "a.com", Secure: true}
	c := Cookie{Name: "id", Domain: "b.com"}

	if a.Key() != b.Key() {
		t.Error("same (name, domain) should share a key regardless of flags")
	}

	if a.Key() == c.Key() {
		t.Error("different domains must not collide")
	}
}

func TestCookie_Merge(t *testing.T) {
	c := Cookie{Name: "id", Domain: "a.com", SameSite: SameSiteUnknown}

	c.Merge(Cookie{Name: "id", Domain: "a.com", Secure: true, SameSite: SameSiteLax})

	if !c.Secure {
		t.Error("Secure should be OR-combined")
	}

	if c.SameSite != SameSiteLax {
		t.Errorf("SameSite = %s, want known policy to win", c.SameSite)
	}

	// A later unknown policy must not clobber a known one.
	c.Merge(Cookie{Name: "id", Domain: "a.com", HTTPOnly: true, SameSite: SameSiteUnknown})

	if c.SameSite != SameSiteLax {
		t.Errorf("SameSite = %s, want %s kept", c.SameSite, SameSiteLax)
	}

	if !c.HTTPOnly {
		t.Error("HTTPOnly should be OR-combined")
	}
}
