// Package collate produces locale-aware sort keys for listing titles.
//
// Both query paths order alphabetic output by the same precomputed key, so the
// index backend (which knows nothing about Ukrainian collation) and the
// relational path stay byte-for-byte consistent.
package collate

import (
	"encoding/hex"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	mu  sync.Mutex
	col = collate.New(language.Ukrainian)
	buf collate.Buffer
)

// Key returns a hex-encoded collation key for s. Keys compare bytewise in the
// same order the Ukrainian collation orders the source strings, so they are
// safe to use as sortable index fields.
func Key(s string) string {
	mu.Lock()
	defer mu.Unlock()
	buf.Reset()
	k := col.KeyFromString(&buf, s)
	return hex.EncodeToString(k)
}

// Less reports whether a sorts before b under the Ukrainian collation.
func Less(a, b string) bool {
	mu.Lock()
	defer mu.Unlock()
	return col.CompareString(a, b) < 0
}
