// Package notifications pushes operator notifications to an ntfy topic.
//
// When no topic is configured NewService returns a no-op implementation, so
// callers never need to branch on configuration.
package notifications
