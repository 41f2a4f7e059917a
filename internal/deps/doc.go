// Package deps checks availability of the external binaries Scribe shells
// out to.
package deps
