// Package daemon hosts the long-running scribed process: single-instance
// locking, startup recovery, and the HTTP API in front of the jobs service.
package daemon
