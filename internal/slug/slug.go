// Package slug derives URL-safe, unique keys from human-readable names.
//
// Make folds a name to lowercase ASCII with hyphens; Unique resolves
// collisions against an existence check by appending 1, 2, 3, … to the base.
// Neither function touches storage on its own: callers provide the lookup
// and decide when a slug is assigned (once, at creation).
package slug

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a name contains no letters or digits.
const Fallback = "farm"

// MaxLen caps the base slug length in bytes. Suffixes may extend past it.
const MaxLen = 100

// Exists reports whether a candidate slug is already taken.
type Exists func(ctx context.Context, candidate string) (bool, error)

// Make returns the normalized slug for name: diacritics are removed,
// letters are lowercased, and every run of characters outside [a-z0-9]
// becomes a single hyphen. Leading and trailing hyphens are trimmed.
//
//	Make("Green Acres")      // "green-acres"
//	Make("  Ferme d'Été ")   // "ferme-d-ete"
//	Make("***")              // "farm"
func Make(name string) string {
	folded, _, err := transform.String(foldChain(), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	out := b.String()
	if len(out) > MaxLen {
		out = strings.TrimRight(out[:MaxLen], "-")
	}
	if out == "" {
		return Fallback
	}
	return out
}

// Unique returns base if it is free, otherwise the first free candidate of
// base1, base2, … There is no upper bound on the suffix. A lookup error
// aborts the search and is returned unchanged.
func Unique(ctx context.Context, base string, exists Exists) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(n)
	}
}

// foldChain decomposes characters and drops combining marks so that
// "é" becomes "e". A fresh chain is built per call; transformers are stateful.
func foldChain() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
