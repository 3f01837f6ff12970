// Package manifest builds and persists patch.json, the record a launcher reads
// to fetch the vanilla jar, verify it, apply the patch and verify the result.
package manifest
