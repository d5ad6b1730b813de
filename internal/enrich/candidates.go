package enrich

import (
	"regexp"
	"strings"
)

var (
	yearTokenRE  = regexp.MustCompile(`^\d{4}$`)
	possessiveRE = regexp.MustCompile(`^[A-Za-z .'-]+?'s\s+(.+)$`)
)

// Candidates derives the ordered list of search strings to try for a raw
// catalog title. Derivations come first, from most to least specific, and
// the original title is always present as the final fallback. The list is
// deduplicated case-insensitively and is deterministic for a given title.
//
// Handled title shapes: a trailing parenthetical ("Star Wars (1977)"), a
// comma-inverted article ("Godfather, The"), a colon-separated subtitle, a
// leading possessive clause ("Bram Stoker's Dracula"), and "&"/"and"
// spelling variants. A parenthetical that is just a four-digit year is not
// itself a candidate; years are matched separately.
func Candidates(title string) []string {
	original := strings.TrimSpace(title)
	if original == "" {
		return nil
	}

	var derived []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			derived = append(derived, s)
		}
	}

	// Trailing parenthetical: inner text and the part before it.
	if strings.HasSuffix(original, ")") {
		if open := strings.LastIndex(original, "("); open != -1 {
			inner := strings.TrimSpace(original[open+1 : len(original)-1])
			if inner != "" && !yearTokenRE.MatchString(inner) {
				add(inner)
			}
			add(original[:open])
		}
	}

	// Comma inversion: "Title, The" reads "The Title".
	for _, s := range append([]string{}, derived...) {
		if idx := strings.LastIndex(s, ", "); idx != -1 {
			add(s[idx+2:] + " " + s[:idx])
		}
	}

	// Subtitle and possessive strips apply to everything so far plus the
	// original, so bare titles without a parenthetical still benefit.
	for _, s := range append(append([]string{}, derived...), original) {
		if idx := strings.Index(s, ":"); idx != -1 {
			add(s[:idx])
		}
		if m := possessiveRE.FindStringSubmatch(s); m != nil {
			add(m[1])
		}
	}

	// Ampersand spelling variants.
	for _, s := range append(append([]string{}, derived...), original) {
		if strings.Contains(s, "&") {
			add(strings.ReplaceAll(s, "&", "and"))
		}
		if strings.Contains(s, " and ") {
			add(strings.ReplaceAll(s, " and ", " & "))
		}
	}

	derived = append(derived, original)

	seen := make(map[string]struct{}, len(derived))
	out := make([]string, 0, len(derived))
	for _, s := range derived {
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
