package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ToISO2 normalizes a language value (ISO code or English name fragment) to
// its two-letter ISO 639-1 form. Returns "" when the value cannot be parsed.
func ToISO2(value string) string {
	tag, ok := parse(value)
	if !ok {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	code := base.String()
	if len(code) != 2 {
		return ""
	}
	return code
}

// DisplayName returns the English display name for a language value, or the
// trimmed input when the value cannot be parsed.
func DisplayName(value string) string {
	trimmed := strings.TrimSpace(value)
	tag, ok := parse(trimmed)
	if !ok {
		return trimmed
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return trimmed
	}
	return name
}

func parse(value string) (language.Tag, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return language.Und, false
	}
	tag, err := language.Parse(trimmed)
	if err != nil || tag == language.Und {
		return language.Und, false
	}
	return tag, true
}
