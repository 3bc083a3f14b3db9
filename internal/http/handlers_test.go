package http

import (
	"strings"
	"testing"
)

func TestReadLimited(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		limit         int64
		wantBody      string
		wantTruncated bool
	}{
		{"under limit", "abc", 5, "abc", false},
		{"at limit", "abcde", 5, "abcde", false},
		{"over limit", "abcdefgh", 5, "abcde", true},
		{"empty", "", 5, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, truncated, err := readLimited(strings.NewReader(tt.input), tt.limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if truncated != tt.wantTruncated {
				t.Errorf("truncated = %v, want %v", truncated, tt.wantTruncated)
			}
		})
	}
}
