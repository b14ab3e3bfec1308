package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given name. Characters common
// in Bosnian/Croatian names are transliterated to ASCII equivalents.
//
// Examples:
//   - "Matematika Š Č" → "matematika-s-c"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))

	replacer := strings.NewReplacer(
		"č", "c", "ć", "c", "đ", "d", "š", "s", "ž", "z",
	)
	slug = replacer.Replace(slug)

	// Replace any non-alphanumeric run with a single hyphen.
	slug = slugRegexp.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}
