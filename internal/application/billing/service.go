// Package billing orchestrates cost allocation for the API and CLI.
//
// Every call builds a fresh Catalog from configuration and stored feedback,
// so concurrent callers never share mutable allocation inputs.
package billing

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/costshare/internal/domain/allocator"
	"github.com/eshaffer321/costshare/internal/domain/validator"
	"github.com/eshaffer321/costshare/internal/infrastructure/config"
	"github.com/eshaffer321/costshare/internal/infrastructure/metrics"
	"github.com/eshaffer321/costshare/internal/infrastructure/storage"
)

var (
	// ErrServiceNotFound is returned for a service ID that is not configured.
	ErrServiceNotFound = errors.New("service not found")

	// ErrInvalidOverride wraps a failed *validator.OverrideValidation.
	ErrInvalidOverride = errors.New("invalid override")

	// ErrInvalidFeedback is returned for feedback that cannot be stored.
	ErrInvalidFeedback = errors.New("invalid feedback")
)

// PeriodLayout formats snapshot periods (YYYY-MM).
const PeriodLayout = "2006-01"

// Report is the result of one billing computation.
type Report struct {
	Projects     map[string]*allocator.ProjectBilling `json:"projects"`
	Summary      allocator.Summary                    `json:"summary"`
	Warnings     []allocator.Warning                  `json:"warnings"`
	ServiceCount int                                  `json:"service_count"`
	GeneratedAt  time.Time                            `json:"generated_at"`
}

// Service computes billing and manages overrides, feedback and snapshots.
type Service struct {
	cfg     *config.Config
	store   storage.Repository
	metrics *metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a billing service. recorder and logger may be nil.
func NewService(cfg *config.Config, store storage.Repository, recorder *metrics.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:     cfg,
		store:   store,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// Catalog builds the effective service catalog from config and feedback.
func (s *Service) Catalog() (*Catalog, error) {
	feedback, err := s.store.ListFeedback()
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}
	return BuildCatalog(s.cfg, feedback), nil
}

// Compute allocates every service's cost and summarizes the result.
func (s *Service) Compute() (*Report, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	return s.compute(catalog), nil
}

func (s *Service) compute(catalog *Catalog) *Report {
	engine := allocator.NewEngine(catalog.Resolver())
	result := engine.ComputeBilling(catalog.Services(), catalog.Projects)
	summary := allocator.Summarize(result)

	for _, w := range result.Warnings {
		s.logger.Warn("allocation warning",
			"code", string(w.Code),
			"service", w.ServiceID,
			"project", w.ProjectID,
		)
	}
	s.logger.Debug("billing computed",
		"services", len(catalog.Entries),
		"total", summary.Total,
		"unassigned", summary.Unassigned,
		"warnings", len(result.Warnings),
	)
	s.metrics.ObserveRun(result, summary)

	return &Report{
		Projects:     result.Projects,
		Summary:      summary,
		Warnings:     result.Warnings,
		ServiceCount: len(catalog.Entries),
		GeneratedAt:  s.now().UTC(),
	}
}

// Services returns the effective catalog entries in configuration order.
func (s *Service) Services() ([]CatalogEntry, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	return catalog.Entries, nil
}

// SetOverride validates and stores a weight override for a service.
// The override must name exactly the service's current projects.
func (s *Service) SetOverride(serviceID string, weights allocator.Weights) error {
	catalog, err := s.Catalog()
	if err != nil {
		return err
	}

	entry, ok := catalog.Find(serviceID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}

	if v := validator.ValidateOverride(entry.Service, weights); !v.Valid {
		s.logger.Info("override rejected", "service", serviceID, "reason", v.Reason)
		return fmt.Errorf("%w: %w", ErrInvalidOverride, v)
	}

	if err := s.store.SaveWeights(serviceID, weights); err != nil {
		return fmt.Errorf("failed to save weights for %s: %w", serviceID, err)
	}

	s.logger.Info("override saved", "service", serviceID, "projects", len(weights))
	return nil
}

// ClearOverride removes a service's override so defaults apply again.
func (s *Service) ClearOverride(serviceID string) error {
	if !s.isConfigured(serviceID) {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}
	if err := s.store.ClearWeights(serviceID); err != nil {
		return fmt.Errorf("failed to clear weights for %s: %w", serviceID, err)
	}
	s.logger.Info("override cleared", "service", serviceID)
	return nil
}

// Feedback returns all stored feedback.
func (s *Service) Feedback() ([]*storage.ServiceFeedback, error) {
	feedback, err := s.store.ListFeedback()
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}
	return feedback, nil
}

// UpdateFeedback applies a partial feedback update to a configured service.
// Weights in the update are validated against the project set the service
// will have once the update is applied.
func (s *Service) UpdateFeedback(serviceID string, update storage.FeedbackUpdate) (*storage.ServiceFeedback, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}

	entry, ok := catalog.Find(serviceID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}

	if update.ActualCost != nil && *update.ActualCost < 0 {
		return nil, fmt.Errorf("%w: actual_cost must not be negative", ErrInvalidFeedback)
	}

	if update.Weights != nil && len(*update.Weights) > 0 {
		target := entry.Service
		if update.Projects != nil {
			target.ProjectIDs = dedupe(*update.Projects)
		}
		if v := validator.ValidateOverride(target, allocator.Weights(*update.Weights)); !v.Valid {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOverride, v)
		}
	}

	// A project change without new weights drops an override that no
	// longer covers the project set.
	if update.Projects != nil && update.Weights == nil && entry.Feedback != nil && len(entry.Feedback.Weights) > 0 {
		target := entry.Service
		target.ProjectIDs = dedupe(*update.Projects)
		if v := validator.ValidateOverride(target, allocator.Weights(entry.Feedback.Weights)); !v.Valid {
			var cleared map[string]int
			update.Weights = &cleared
			s.logger.Info("stale override cleared", "service", serviceID, "reason", v.Reason)
		}
	}

	f, err := s.store.UpdateFeedback(serviceID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update feedback for %s: %w", serviceID, err)
	}

	s.logger.Info("feedback updated", "service", serviceID)
	return f, nil
}

// ReplaceFeedback discards all stored feedback and stores the given set.
// Weights are validated against the project set the new feedback yields.
// Entries for services missing from the config are kept unvalidated.
func (s *Service) ReplaceFeedback(feedback []*storage.ServiceFeedback) error {
	for _, f := range feedback {
		if f.ServiceID == "" {
			return fmt.Errorf("%w: entry without service_id", ErrInvalidFeedback)
		}
		if f.ActualCost != nil && *f.ActualCost < 0 {
			return fmt.Errorf("%w: actual_cost must not be negative for %s", ErrInvalidFeedback, f.ServiceID)
		}
	}

	catalog := BuildCatalog(s.cfg, feedback)
	for _, f := range feedback {
		if len(f.Weights) == 0 {
			continue
		}
		entry, ok := catalog.Find(f.ServiceID)
		if !ok {
			continue
		}
		if v := validator.ValidateOverride(entry.Service, allocator.Weights(f.Weights)); !v.Valid {
			s.logger.Info("feedback import rejected", "service", f.ServiceID, "reason", v.Reason)
			return fmt.Errorf("%w: %s: %w", ErrInvalidOverride, f.ServiceID, v)
		}
	}
	if err := s.store.ReplaceFeedback(feedback); err != nil {
		return fmt.Errorf("failed to replace feedback: %w", err)
	}
	s.logger.Info("feedback replaced", "entries", len(feedback))
	return nil
}

// RecordSnapshot computes the current billing and stores it as the snapshot
// for now's month, replacing any snapshot already recorded for that month.
func (s *Service) RecordSnapshot(now time.Time) (*storage.Snapshot, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	report := s.compute(catalog)

	snap := &storage.Snapshot{
		ID:           uuid.New().String(),
		Period:       now.Format(PeriodLayout),
		RecordedAt:   now.UTC(),
		Total:        report.Summary.Total,
		Billable:     report.Summary.Billable,
		Internal:     report.Summary.Internal,
		Unassigned:   report.Summary.Unassigned,
		ServiceCount: report.ServiceCount,
		ByProject:    report.Summary.ByProject,
		ByCategory:   report.Summary.ByCategory,
		ByClient:     report.Summary.ByClient,
	}

	if err := s.store.SaveSnapshot(snap); err != nil {
		return nil, fmt.Errorf("failed to save snapshot %s: %w", snap.Period, err)
	}
	s.metrics.ObserveSnapshot()

	s.logger.Info("snapshot recorded", "period", snap.Period, "total", snap.Total)
	return snap, nil
}

// History returns recorded snapshots ordered by period.
func (s *Service) History() ([]*storage.Snapshot, error) {
	snapshots, err := s.store.ListSnapshots()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snapshots, nil
}

// SchemaVersion reports the feedback store's migration version.
func (s *Service) SchemaVersion() (int64, error) {
	v, err := s.store.SchemaVersion()
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func (s *Service) isConfigured(serviceID string) bool {
	for _, sc := range s.cfg.Services {
		if sc.ID == serviceID {
			return true
		}
	}
	return false
}
