package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	FeedbackRepository
	SnapshotRepository

	// SchemaVersion returns the applied migration version
	SchemaVersion() (int64, error)

	Close() error
}

// FeedbackRepository handles per-service user feedback
type FeedbackRepository interface {
	// GetFeedback retrieves feedback for a service (nil if none)
	GetFeedback(serviceID string) (*ServiceFeedback, error)

	// ListFeedback returns all stored feedback ordered by service ID
	ListFeedback() ([]*ServiceFeedback, error)

	// UpdateFeedback applies a partial update, creating the row if needed
	UpdateFeedback(serviceID string, update FeedbackUpdate) (*ServiceFeedback, error)

	// ReplaceFeedback discards all feedback and stores the given set
	ReplaceFeedback(feedback []*ServiceFeedback) error

	// SaveWeights stores a weight override for a service
	SaveWeights(serviceID string, weights map[string]int) error

	// ClearWeights removes a service's weight override
	ClearWeights(serviceID string) error
}

// SnapshotRepository handles monthly cost snapshots
type SnapshotRepository interface {
	// SaveSnapshot stores a snapshot, replacing any snapshot for the same period
	SaveSnapshot(snapshot *Snapshot) error

	// GetSnapshot retrieves the snapshot for a period (nil if none)
	GetSnapshot(period string) (*Snapshot, error)

	// ListSnapshots returns all snapshots ordered by period ascending
	ListSnapshots() ([]*Snapshot, error)
}
