// pkg/schema/events.go
package schema

// GenerationStatus is the terminal state reported for a generation.
type GenerationStatus string

const (
	GenerationSucceeded GenerationStatus = "succeeded"
	GenerationFailed    GenerationStatus = "failed"
)

// GenerationDone is published once per generation when it reaches a terminal
// state, for downstream consumers (usage metering, notifications).
type GenerationDone struct {
	ID         string           `json:"id"`
	OwnerID    string           `json:"owner_id"`
	Title      string           `json:"title"`
	Style      string           `json:"style"`
	Status     GenerationStatus `json:"status"`
	ImageURL   string           `json:"image_url,omitempty"`
	Error      string           `json:"error,omitempty"`
	DurationMs int64            `json:"duration_ms"`
	HappenedAt int64            `json:"happened_at"`
}
