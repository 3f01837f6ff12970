// Package generator produces the update kit consumed by the Paperclip launcher.
//
// A run validates the two input jars, prepares the output directory, copies
// the protocol descriptor out of the paper jar when it has one, writes the
// bsdiff patch, hashes both jars and writes patch.json. Any failure aborts the
// run; the next run cleans up whatever the failed one left behind.
package generator
