package main

import "testing"

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"empty", nil, "Unknown"},
		{"single", []string{"Smith JD"}, "Smith JD"},
		{"at limit", []string{"Smith JD", "Doe JR", "Lee K"}, "Smith JD, Doe JR, Lee K"},
		{"over limit", []string{"Smith JD", "Doe JR", "Lee K", "Park S"}, "Smith JD, Doe JR, Lee K et al."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAuthors(tt.authors, MaxAuthorsShown); got != tt.want {
				t.Errorf("formatAuthors() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short enough", "A Study", 20, "A Study"},
		{"exactly max", "exactly-ten", 11, "exactly-ten"},
		{"truncated", "A very long publication title", 15, "A very long ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString() = %q, want %q", got, tt.want)
			}
		})
	}
}
