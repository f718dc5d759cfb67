package domain

import (
	"strings"
	"testing"
)

// FuzzParseAlertID checks that any accepted input normalizes to the canonical
// lowercase form and parses back to the same value.
func FuzzParseAlertID(f *testing.F) {
	for _, seed := range []string{
		"",
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"6BA7B810-9DAD-11D1-80B4-00C04FD430C8",
		"urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"{6ba7b810-9dad-11d1-80b4-00c04fd430c8}",
		"00000000-0000-0000-0000-000000000000",
		"\xff\xfe",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseAlertID(input)
		if err != nil {
			return
		}
		if id.IsNil() {
			t.Fatal("nil alert id accepted")
		}
		canonical := id.String()
		if canonical != strings.ToLower(canonical) || len(canonical) != 36 {
			t.Fatalf("non-canonical rendering %q", canonical)
		}
		again, err := ParseAlertID(canonical)
		if err != nil || again != id {
			t.Fatalf("canonical form %q did not round-trip: %v", canonical, err)
		}
	})
}
