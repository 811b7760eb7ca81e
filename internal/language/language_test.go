package language

import "testing"

func TestToISO3(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ja", "jpn"},
		{"JA", "jpn"},
		{"en", "eng"},
		{"de", "deu"},
		{"ko", "kor"},
		{"jpn", "jpn"},
		{"xyz", "xyz"}, // unknown 3-letter passes through
		{"", "und"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO3(tt.input); got != tt.expected {
				t.Errorf("ToISO3(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ja", "Japanese"},
		{"en", "English"},
		{"de", "German"},
		{"", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DisplayName(tt.input); got != tt.expected {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
