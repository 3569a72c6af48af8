// Package slug maps user-entered names onto filesystem-safe identifiers.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/starford/studio/internal/apperr"
)

const (
	// Fallback is returned by Sanitize when nothing usable is left.
	Fallback = "untitled"
	// MaxLength bounds identifiers well below common filename limits.
	MaxLength = 80
)

// Sanitize lowercases raw, folds accented letters to ASCII, turns every run
// of other characters into a single hyphen and trims hyphens at both ends.
//
//	Sanitize("My Project!")   // "my-project"
//	Sanitize("Crème Brûlée")  // "creme-brulee"
//	Sanitize("!!!")           // "untitled"
func Sanitize(raw string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	s := b.String()
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	if s == "" {
		return Fallback
	}
	return s
}

// Uniquify returns base when it is not in existing, otherwise the first of
// base-1, base-2, ... that is free. At most len(existing)+1 candidates are
// tried, so a free one is always found; ErrNameConflict is returned only if
// that bound is exhausted.
func Uniquify(base string, existing map[string]struct{}) (string, error) {
	if _, taken := existing[base]; !taken {
		return base, nil
	}
	for n := 1; n <= len(existing)+1; n++ {
		suffix := "-" + strconv.Itoa(n)
		stem := base
		if len(stem)+len(suffix) > MaxLength {
			stem = strings.TrimRight(stem[:MaxLength-len(suffix)], "-")
		}
		candidate := stem + suffix
		if _, taken := existing[candidate]; !taken {
			return candidate, nil
		}
	}
	return "", apperr.E(apperr.ErrNameConflict, "uniquify", base, nil)
}

// Valid reports whether id consists only of lowercase ASCII letters, digits
// and inner hyphens.
func Valid(id string) bool {
	if id == "" || id[0] == '-' || id[len(id)-1] == '-' {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

// Set builds a lookup set from names.
func Set(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
