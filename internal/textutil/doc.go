// Package textutil provides filename sanitization helpers for uploaded media.
//
// Uploaded filenames become job identifiers and filesystem paths, so every
// name that crosses the upload boundary is funneled through SanitizeFileName
// before it touches the data directories.
package textutil
