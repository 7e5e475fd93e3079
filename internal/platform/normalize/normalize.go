// Package normalize builds provider-independent comparison keys from
// free-text team names. Every matching decision in the resolver and the
// merge engine goes through Key, so it must stay deterministic and
// idempotent.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	parentheticalRegex = regexp.MustCompile(`\s*\([^)]*\)`)
	whitespaceRegex    = regexp.MustCompile(`\s+`)

	// Organizational tokens that providers attach inconsistently. Sponsor
	// names are intentionally NOT here: those go through the override table.
	suffixTokens = map[string]struct{}{
		"basketball": {},
		"basket":     {},
		"club":       {},
		"bc":         {},
		"bk":         {},
		"kk":         {},
		"cb":         {},
		"sad":        {},
	}

	diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Key canonicalizes a raw team name into a comparison key. Idempotent:
// Key(Key(x)) == Key(x).
func Key(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	s = foldDiacritics(s)
	s = parentheticalRegex.ReplaceAllString(s, " ")
	s = stripSuffixTokens(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	s = stripNonAlphanumeric(s)

	return s
}

// TeamPair builds an order-sensitive key for a (home, away) matchup,
// independent of date. The enricher uses it to match scoreboard rows.
func TeamPair(home, away string) string {
	return Key(home) + "|" + Key(away)
}

func foldDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

func stripSuffixTokens(s string) string {
	words := strings.Fields(s)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if _, drop := suffixTokens[word]; drop {
			continue
		}
		kept = append(kept, word)
	}
	if len(kept) == 0 {
		// A name made entirely of organizational tokens still needs a key.
		return strings.Join(words, " ")
	}
	return strings.Join(kept, " ")
}

func stripNonAlphanumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
