// Package kit contains the core domain vocabulary of the update kit.
//
// It defines the on-disk layout of a generated kit and the error taxonomy
// shared by every stage of the generation pipeline.
package kit
