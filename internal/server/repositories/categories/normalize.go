package categories

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"
)

// NormalizeName folds a category name to its identity: surrounding
// whitespace and trailing punctuation are dropped and the rest is
// lower-cased, so "Web", " web. ", "Web!" and "WEB" are the same category.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.TrimRightFunc(n, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}

// NameHash returns the stored hash of the normalized name.
func NameHash(name string) string {
	sum := sha1.Sum([]byte(NormalizeName(name)))
	return hex.EncodeToString(sum[:])
}
