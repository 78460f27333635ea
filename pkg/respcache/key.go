package respcache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize lower-cases the query and collapses whitespace so trivially
// different phrasings (extra spaces, case) map to the same fingerprint.
func Normalize(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Key derives the deterministic cache fingerprint from the normalized query
// and its scoping fields. Identical inputs always produce identical keys.
func Key(query, userScope, mode, language string) string {
	h := sha256.New()
	h.Write([]byte(Normalize(query)))
	h.Write([]byte("|"))
	h.Write([]byte(userScope))
	h.Write([]byte("|"))
	h.Write([]byte(mode))
	h.Write([]byte("|"))
	h.Write([]byte(language))
	return hex.EncodeToString(h.Sum(nil))
}
