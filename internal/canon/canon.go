// Package canon implements the injection-free canonicalization used to turn
// an ordered sequence of byte strings into one unambiguous string, for both
// KDF context construction and AAD binding. Base64-url-no-pad never produces
// a colon, so joining encoded elements with a colon is an injective function
// of the input sequence: no concatenation of two different sequences can
// ever collide.
package canon

import (
	"encoding/base64"
	"strings"
)

const separator = ":"

// Canonicalize encodes each element as base64-url-no-pad and joins the
// results with a single colon. An empty sequence canonicalizes to the empty
// string; a single-element sequence canonicalizes to its bare encoding with
// no separator.
func Canonicalize(elements [][]byte) string {
	encoded := make([]string, len(elements))
	for i, e := range elements {
		encoded[i] = base64.RawURLEncoding.EncodeToString(e)
	}
	return JoinCanonical(encoded)
}

// JoinCanonical joins already-canonicalized strings with the same separator
// Canonicalize uses, without re-encoding them.
func JoinCanonical(parts []string) string {
	return strings.Join(parts, separator)
}
