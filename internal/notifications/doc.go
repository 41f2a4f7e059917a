// Package notifications sends job lifecycle push notifications through
// ntfy. Without a configured topic every call is a no-op, so callers never
// branch on whether notifications are enabled.
package notifications
