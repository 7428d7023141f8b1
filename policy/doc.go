// Package policy implements the three interchangeable routing strategies:
// threshold-adaptive (Threshold), claim-based (Ownership) and
// sticky-with-exit-detection (Sticky). All three share the same suitability
// evaluation glue with fail-soft scoring and an optional TTL-bounded score
// cache; they differ only in how they weigh the incumbent against
// challengers.
package policy
