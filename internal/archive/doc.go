// Package archive opens server jars as random-access zip containers and copies
// individual entries out of them.
package archive
