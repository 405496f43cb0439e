package feed

import (
	"regexp"
	"strings"
)

// Several real-world producers emit markup that is schema-adjacent but not
// strictly well-formed for our parsers: namespaced element names (the strict
// parser maps them by local name, but our wire structs address them by their
// dashed form), bare ampersands, and free-text containers whose embedded
// markup would otherwise be parsed as structure. These text-level repairs run
// unconditionally on every fetched feed before structural parsing.

var namespacedTagRe = regexp.MustCompile(`<(/?)([a-zA-Z_][a-zA-Z0-9_]*):([a-zA-Z_][a-zA-Z0-9_]*) *([^>]*)>`)

// repairNamespacedTags rewrites element names of the shape prefix:local to
// prefix-local, preserving attributes, for both open and close tags.
func repairNamespacedTags(s string) string {
	return namespacedTagRe.ReplaceAllString(s, `<$1$2-$3 $4>`)
}

// repairBareAmpersands escapes a bare "&" followed by a space, which some
// producers emit unescaped inside text content.
func repairBareAmpersands(s string) string {
	return strings.ReplaceAll(s, "& ", "&amp; ")
}

// repairDescriptionMarkup wraps description content in CDATA so markup
// embedded in the free-text container is not mis-parsed as structure.
func repairDescriptionMarkup(s string) string {
	s = strings.ReplaceAll(s, "<description>", "<description><![CDATA[")
	return strings.ReplaceAll(s, "</description>", "]]></description>")
}

// Repair applies the full set of text-level repairs in order.
func Repair(s string) string {
	s = repairNamespacedTags(s)
	s = repairBareAmpersands(s)
	return repairDescriptionMarkup(s)
}
