// internal/app/system/normalize/normalize_test.go
package normalize

import "testing"

func TestQueryParam(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{" bug ", "bug"},
		{"\tlogin fails\n", "login fails"},
	}
	for _, tc := range tests {
		if got := QueryParam(tc.in); got != tc.want {
			t.Errorf("QueryParam(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ada@Example.COM", "ada@example.com"},
		{"  ada@example.com ", "ada@example.com"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Email(tc.in); got != tc.want {
			t.Errorf("Email(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
