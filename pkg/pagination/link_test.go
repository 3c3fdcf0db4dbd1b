package pagination

import (
	"net/http"
	"testing"
)

func TestNextPageURL(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		expected string
	}{
		{
			name:     "next and last",
			link:     `<https://api.github.com/enterprises/acme/audit-log?page=2>; rel="next", <https://api.github.com/enterprises/acme/audit-log?page=9>; rel="last"`,
			expected: "https://api.github.com/enterprises/acme/audit-log?page=2",
		},
		{
			name:     "next listed after prev",
			link:     `<https://api.github.com/x?page=1>; rel="prev", <https://api.github.com/x?page=3>; rel="next"`,
			expected: "https://api.github.com/x?page=3",
		},
		{
			name:     "last page",
			link:     `<https://api.github.com/x?page=8>; rel="prev", <https://api.github.com/x?page=9>; rel="last"`,
			expected: "",
		},
		{
			name:     "no header",
			link:     "",
			expected: "",
		},
		{
			name:     "unquoted rel",
			link:     `<https://api.github.com/x?page=2>; rel=next`,
			expected: "https://api.github.com/x?page=2",
		},
		{
			name:     "case insensitive rel",
			link:     `<https://api.github.com/x?page=2>; REL="NEXT"`,
			expected: "https://api.github.com/x?page=2",
		},
		{
			name:     "cursor style next",
			link:     `<https://api.github.com/enterprises/acme/audit-log?after=MS42NjQ%3D>; rel="next"`,
			expected: "https://api.github.com/enterprises/acme/audit-log?after=MS42NjQ%3D",
		},
		{
			name:     "malformed entry ignored",
			link:     `garbage, <https://api.github.com/x?page=2>; rel="next"`,
			expected: "https://api.github.com/x?page=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.link != "" {
				resp.Header.Set("Link", tt.link)
			}

			if got := nextPageURL(resp); got != tt.expected {
				t.Errorf("nextPageURL() = %q, want %q", got, tt.expected)
			}
		})
	}
}
