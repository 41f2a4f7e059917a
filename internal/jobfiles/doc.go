// Package jobfiles derives the filesystem locations of a job's artifacts
// from its uploaded filename.
//
// The derivation is pure: a sanitized base name becomes the job identifier,
// and the input/result/status locations follow from it and the configured
// data directories. Nothing here is cached or stateful.
package jobfiles
