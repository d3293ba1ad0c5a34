package model

// Wait-time event types published to the board channel.
const (
	EventWaitTimeSet     = "provider.wait_time.set"
	EventWaitTimeCleared = "provider.wait_time.cleared"
	EventProviderRemoved = "provider.removed"
)

type WaitTimeEvent struct {
	Type       string    `json:"type"`
	ProviderID int64     `json:"providerId"`
	WaitTime   *int      `json:"waitTime"`
	ChangedAt  Timestamp `json:"changedAt"`
}
