package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ToISO3 converts a language code or name to its ISO 639-2 form, the form
// ffmpeg expects in stream language metadata. Unrecognized three-letter
// codes pass through; anything else unrecognized becomes "und".
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	tag, err := language.Parse(code)
	if err != nil {
		if len(code) == 3 {
			return code
		}
		return "und"
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "und"
	}
	return base.ISO3()
}

// DisplayName returns a human-readable English name for a language code.
// Returns "Unknown" for empty or unrecognized input.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	tag, err := language.Parse(strings.ToLower(code))
	if err != nil {
		return strings.ToUpper(code)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return strings.ToUpper(code)
	}
	return name
}
