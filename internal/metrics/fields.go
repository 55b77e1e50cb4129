package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod   = "method"
	AttrPath     = "path"
	AttrStatus   = "status"
	AttrProvider = "provider"
	AttrOutcome  = "outcome"
)

// Announcement outcomes.
const (
	AnnouncementScheduled = "scheduled"
	AnnouncementDelivered = "delivered"
	AnnouncementCancelled = "cancelled"
	AnnouncementFailed    = "failed"
)

// Poller exit outcomes, shared with the outcome log field.
const (
	ExitFinished  = "finished"
	ExitStopped   = "stopped"
	ExitAbandoned = "abandoned"
	ExitFailed    = "failed"
)
