package realtime

// Named realtime streams used across the platform.
const (
	// StreamNotifications carries per-user notification events.
	StreamNotifications = "notifications"
	// StreamStoryParses carries parse lifecycle events (started, completed,
	// failed) for stories owned by the subscriber.
	StreamStoryParses = "stories.parse"
)
