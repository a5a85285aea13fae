package domain

import "testing"

func TestSanitizeID(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"uuid intacto", "550e8400-e29b-41d4-a716-446655440000", "550e8400-e29b-41d4-a716-446655440000"},
		{"espacios recortados", "  user_1  ", "user_1"},
		{"path traversal eliminado", "../../etc/passwd", "etcpasswd"},
		{"separadores eliminados", "google_123/../x", "google_123x"},
		{"solo basura", "/|..\\", ""},
		{"vacio", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeID(tc.in); got != tc.want {
				t.Fatalf("SanitizeID(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
