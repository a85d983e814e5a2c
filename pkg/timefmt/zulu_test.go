package timefmt

import (
	"testing"
	"time"
)

func TestZulu(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)

	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "utc midnight",
			input:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: "2024-01-01T00:00:00Z",
		},
		{
			name:     "end of month",
			input:    time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
			expected: "2024-01-31T23:59:59Z",
		},
		{
			name:     "sub-second precision dropped",
			input:    time.Date(2024, 6, 15, 12, 30, 45, 999_999_999, time.UTC),
			expected: "2024-06-15T12:30:45Z",
		},
		{
			name:     "offset converted to utc",
			input:    time.Date(2024, 1, 1, 1, 0, 0, 0, berlin),
			expected: "2024-01-01T00:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Zulu(tt.input); got != tt.expected {
				t.Errorf("Zulu() = %q, want %q", got, tt.expected)
			}
		})
	}
}
