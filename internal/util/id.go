// Package util bundles small internal helpers shared across packages.
package util

import (
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
)

// NewID generates a new UUID-based unique identifier used for sessions and
// turn correlation.
func NewID() string { return uuid.NewString() }

// HashInput returns a short stable hash of an input string, used as part of
// suitability cache keys so raw user text never becomes a map key.
func HashInput(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}
