// Package author parses MEDLINE author strings.
package author

import "strings"

// Generational and degree suffixes that may trail the initials.
var nameSuffixes = map[string]bool{
	"jr":   true,
	"jr.":  true,
	"sr":   true,
	"sr.":  true,
	"2nd":  true,
	"3rd":  true,
	"4th":  true,
	"ii":   true,
	"iii":  true,
	"iv":   true,
	"v":    true,
	"phd":  true,
	"ph.d": true,
	"md":   true,
	"m.d":  true,
}

// FamilyName extracts the family name from a MEDLINE AU value
// ("Matsen FA", "Smith JD Jr", "van der Berg J"). Any trailing suffix
// tokens come off first, then the initials token; whatever remains is
// the family name, multi-part names included. A single token comes
// back unchanged, which also keeps collective author names intact.
//
// Known limitation: a family name that itself looks like initials
// ("NG") cannot be told apart from an initials token.
func FamilyName(au string) string {
	parts := strings.Fields(au)
	if len(parts) == 0 {
		return ""
	}

	for len(parts) > 1 && nameSuffixes[strings.ToLower(parts[len(parts)-1])] {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 1 && isInitials(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}

	return strings.Join(parts, " ")
}

// isInitials reports whether tok is a run of one to three uppercase
// letters, the MEDLINE initials form.
func isInitials(tok string) bool {
	if len(tok) == 0 || len(tok) > 3 {
		return false
	}
	for _, r := range tok {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
