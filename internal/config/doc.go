// Package config defines the generator parameters and helpers to load,
// merge, validate and save them in YAML format.
//
// The Config type is a flat record: the two input jars, the output directory,
// the version label, the vanilla download URL template and the digest algorithm.
package config
