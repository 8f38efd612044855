package storage

import (
	"sort"
	"sync"
	"time"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	mu        sync.Mutex
	feedback  map[string]*ServiceFeedback
	snapshots map[string]*Snapshot

	// Hooks for test assertions
	SaveWeightsCalled  bool
	LastSavedWeights   map[string]int
	ClearWeightsCalled bool
	SaveSnapshotCalled bool
	LastSavedSnapshot  *Snapshot

	// Error injection for testing error paths
	GetFeedbackErr    error
	ListFeedbackErr   error
	UpdateFeedbackErr error
	SaveWeightsErr    error
	SaveSnapshotErr   error
	ListSnapshotsErr  error
	SchemaVersionErr  error

	// Version is returned by SchemaVersion
	Version int64
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		feedback:  make(map[string]*ServiceFeedback),
		snapshots: make(map[string]*Snapshot),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// AddFeedback seeds feedback directly
func (m *MockRepository) AddFeedback(f *ServiceFeedback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback[f.ServiceID] = f
}

// AddSnapshot seeds a snapshot directly
func (m *MockRepository) AddSnapshot(s *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[s.Period] = s
}

// GetFeedback implements FeedbackRepository
func (m *MockRepository) GetFeedback(serviceID string) (*ServiceFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetFeedbackErr != nil {
		return nil, m.GetFeedbackErr
	}
	f, ok := m.feedback[serviceID]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

// ListFeedback implements FeedbackRepository
func (m *MockRepository) ListFeedback() ([]*ServiceFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListFeedbackErr != nil {
		return nil, m.ListFeedbackErr
	}
	out := make([]*ServiceFeedback, 0, len(m.feedback))
	for _, f := range m.feedback {
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceID < out[j].ServiceID })
	return out, nil
}

// UpdateFeedback implements FeedbackRepository
func (m *MockRepository) UpdateFeedback(serviceID string, update FeedbackUpdate) (*ServiceFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateFeedbackErr != nil {
		return nil, m.UpdateFeedbackErr
	}
	f, ok := m.feedback[serviceID]
	if !ok {
		f = &ServiceFeedback{ServiceID: serviceID}
		m.feedback[serviceID] = f
	}
	update.Apply(f)
	f.UpdatedAt = time.Now().UTC()
	cp := *f
	return &cp, nil
}

// ReplaceFeedback implements FeedbackRepository
func (m *MockRepository) ReplaceFeedback(feedback []*ServiceFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = make(map[string]*ServiceFeedback, len(feedback))
	for _, f := range feedback {
		cp := *f
		m.feedback[f.ServiceID] = &cp
	}
	return nil
}

// SaveWeights implements FeedbackRepository
func (m *MockRepository) SaveWeights(serviceID string, weights map[string]int) error {
	m.mu.Lock()
	m.SaveWeightsCalled = true
	m.LastSavedWeights = copyWeights(weights)
	err := m.SaveWeightsErr
	m.mu.Unlock()
	if err != nil {
		return err
	}
	_, err = m.UpdateFeedback(serviceID, FeedbackUpdate{Weights: &weights})
	return err
}

// ClearWeights implements FeedbackRepository
func (m *MockRepository) ClearWeights(serviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearWeightsCalled = true
	if f, ok := m.feedback[serviceID]; ok {
		f.Weights = nil
	}
	return nil
}

// SaveSnapshot implements SnapshotRepository
func (m *MockRepository) SaveSnapshot(s *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveSnapshotCalled = true
	m.LastSavedSnapshot = s
	if m.SaveSnapshotErr != nil {
		return m.SaveSnapshotErr
	}
	m.snapshots[s.Period] = s
	return nil
}

// GetSnapshot implements SnapshotRepository
func (m *MockRepository) GetSnapshot(period string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[period]
	if !ok {
		return nil, nil
	}
	return s, nil
}

// ListSnapshots implements SnapshotRepository
func (m *MockRepository) ListSnapshots() ([]*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListSnapshotsErr != nil {
		return nil, m.ListSnapshotsErr
	}
	out := make([]*Snapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

// SchemaVersion implements Repository
func (m *MockRepository) SchemaVersion() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SchemaVersionErr != nil {
		return 0, m.SchemaVersionErr
	}
	return m.Version, nil
}

// Close implements Repository
func (m *MockRepository) Close() error {
	return nil
}
