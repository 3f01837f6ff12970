// Package digest computes named cryptographic digests over in-memory artifacts.
//
// SHA-256 is the integrity digest written into the kit manifest. SHA-1 is kept
// only because the vanilla download URL is keyed by it.
package digest
