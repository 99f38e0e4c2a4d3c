// Package validcache memoizes the most recent export-readiness report.
//
// The cache holds exactly one entry: the last report fetched, keyed by the
// selection fingerprint. A lookup hits only when the fingerprint matches and
// the entry is younger than the TTL; anything else fetches fresh and
// replaces the slot. Switching selections and switching back is two misses:
// this is a "last call" cache, not an LRU.
package validcache
