package store

import "testing"

func TestNextVersionID(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{name: "empty store", existing: nil, want: "policy-v1.0.0"},
		{name: "single version", existing: []string{"policy-v1.0.0"}, want: "policy-v1.0.1"},
		{
			name:     "greatest triple wins over insertion order",
			existing: []string{"policy-v1.0.9", "policy-v1.2.0", "policy-v1.1.5"},
			want:     "policy-v1.2.1",
		},
		{
			name:     "numeric not lexicographic comparison",
			existing: []string{"policy-v1.0.2", "policy-v1.0.10"},
			want:     "policy-v1.0.11",
		},
		{
			name:     "malformed ids are ignored",
			existing: []string{"policy-v2", "v1.0.0", "policy-v1.0.0-beta", "policy-v1.3.7", "garbage"},
			want:     "policy-v1.3.8",
		},
		{
			name:     "only malformed ids",
			existing: []string{"legacy-1", "policy-vX.Y.Z"},
			want:     "policy-v1.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextVersionID(tt.existing); got != tt.want {
				t.Errorf("nextVersionID(%v) = %q, want %q", tt.existing, got, tt.want)
			}
		})
	}
}

func TestParseVersionID(t *testing.T) {
	major, minor, patch, ok := parseVersionID("policy-v2.11.3")
	if !ok {
		t.Fatal("parseVersionID() ok = false, want true")
	}
	if major != 2 || minor != 11 || patch != 3 {
		t.Errorf("parseVersionID() = (%d, %d, %d), want (2, 11, 3)", major, minor, patch)
	}

	for _, malformed := range []string{"", "policy-v1.0", "policy-v1.0.0.0", "POLICY-V1.0.0", "policy-v-1.0.0"} {
		if _, _, _, ok := parseVersionID(malformed); ok {
			t.Errorf("parseVersionID(%q) ok = true, want false", malformed)
		}
	}
}

func TestCompareVersionIDs(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"policy-v1.0.0", "policy-v1.0.0", 0},
		{"policy-v1.0.2", "policy-v1.0.10", -1},
		{"policy-v2.0.0", "policy-v1.9.9", 1},
		{"policy-v1.0.0", "not-a-version", 1},
		{"not-a-version", "policy-v1.0.0", -1},
	}

	for _, tt := range tests {
		if got := compareVersionIDs(tt.a, tt.b); got != tt.want {
			t.Errorf("compareVersionIDs(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
