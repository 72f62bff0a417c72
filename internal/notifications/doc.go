// Package notifications sends optional push notifications about batch
// progress through ntfy. When no topic is configured every call is a no-op.
package notifications
