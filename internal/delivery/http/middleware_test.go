package http

import (
	"testing"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{
			name:           "exact match",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{"http://localhost:5173"},
			want:           true,
		},
		{
			name:           "wildcard match",
			origin:         "https://preview-abc123.nearbuy.app",
			allowedOrigins: []string{"https://preview-*"},
			want:           true,
		},
		{
			name:           "multiple allowed origins - matches second",
			origin:         "http://localhost:3000",
			allowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			want:           true,
		},
		{
			name:           "no match",
			origin:         "https://evil.example.com",
			allowedOrigins: []string{"http://localhost:5173"},
			want:           false,
		},
		{
			name:           "empty origin",
			origin:         "",
			allowedOrigins: []string{"http://localhost:5173"},
			want:           false,
		},
		{
			name:           "empty allowed list",
			origin:         "http://localhost:5173",
			allowedOrigins: nil,
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAllowedOrigin(tt.origin, tt.allowedOrigins); got != tt.want {
				t.Errorf("isAllowedOrigin(%q, %v) = %v, want %v", tt.origin, tt.allowedOrigins, got, tt.want)
			}
		})
	}
}
