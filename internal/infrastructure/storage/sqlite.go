package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for feedback and snapshots.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

const feedbackColumns = `service_id, actual_cost, status, user_notes, action_taken, plan,
	       category, projects_json, weights_json, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFeedback(row rowScanner) (*ServiceFeedback, error) {
	f := &ServiceFeedback{}
	var actualCost sql.NullFloat64
	var projectsJSON, weightsJSON sql.NullString

	err := row.Scan(
		&f.ServiceID,
		&actualCost,
		&f.Status,
		&f.UserNotes,
		&f.ActionTaken,
		&f.Plan,
		&f.Category,
		&projectsJSON,
		&weightsJSON,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if actualCost.Valid {
		cost := actualCost.Float64
		f.ActualCost = &cost
	}
	if projectsJSON.Valid {
		if err := json.Unmarshal([]byte(projectsJSON.String), &f.Projects); err != nil {
			return nil, fmt.Errorf("decode projects for %s: %w", f.ServiceID, err)
		}
	}
	if weightsJSON.Valid {
		if err := json.Unmarshal([]byte(weightsJSON.String), &f.Weights); err != nil {
			return nil, fmt.Errorf("decode weights for %s: %w", f.ServiceID, err)
		}
	}

	return f, nil
}

// GetFeedback retrieves feedback for a service.
// Returns nil, nil if the service has no feedback.
func (s *Storage) GetFeedback(serviceID string) (*ServiceFeedback, error) {
	return getFeedback(s.db, serviceID)
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func getFeedback(q querier, serviceID string) (*ServiceFeedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM service_feedback WHERE service_id = ?`

	f, err := scanFeedback(q.QueryRow(query, serviceID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

// ListFeedback returns all feedback ordered by service ID
func (s *Storage) ListFeedback() ([]*ServiceFeedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM service_feedback ORDER BY service_id ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	feedback := make([]*ServiceFeedback, 0)
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		feedback = append(feedback, f)
	}

	return feedback, rows.Err()
}

// UpdateFeedback applies a partial update inside a transaction
func (s *Storage) UpdateFeedback(serviceID string, update FeedbackUpdate) (*ServiceFeedback, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	f, err := getFeedback(tx, serviceID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		f = &ServiceFeedback{ServiceID: serviceID}
	}

	update.Apply(f)
	f.UpdatedAt = time.Now().UTC()

	if err := upsertFeedback(tx, f); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return f, nil
}

// ReplaceFeedback discards all stored feedback and writes the given set
func (s *Storage) ReplaceFeedback(feedback []*ServiceFeedback) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM service_feedback`); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, f := range feedback {
		if f.UpdatedAt.IsZero() {
			f.UpdatedAt = now
		}
		if err := upsertFeedback(tx, f); err != nil {
			return fmt.Errorf("save feedback for %s: %w", f.ServiceID, err)
		}
	}

	return tx.Commit()
}

// SaveWeights stores a weight override for a service
func (s *Storage) SaveWeights(serviceID string, weights map[string]int) error {
	_, err := s.UpdateFeedback(serviceID, FeedbackUpdate{Weights: &weights})
	return err
}

// ClearWeights removes a service's weight override
func (s *Storage) ClearWeights(serviceID string) error {
	query := `UPDATE service_feedback SET weights_json = NULL, updated_at = ? WHERE service_id = ?`
	_, err := s.db.Exec(query, time.Now().UTC(), serviceID)
	return err
}

func upsertFeedback(q querier, f *ServiceFeedback) error {
	var actualCost sql.NullFloat64
	if f.ActualCost != nil {
		actualCost = sql.NullFloat64{Float64: *f.ActualCost, Valid: true}
	}

	var projectsJSON, weightsJSON sql.NullString
	if f.Projects != nil {
		data, err := json.Marshal(f.Projects)
		if err != nil {
			return err
		}
		projectsJSON = sql.NullString{String: string(data), Valid: true}
	}
	if f.Weights != nil {
		data, err := json.Marshal(f.Weights)
		if err != nil {
			return err
		}
		weightsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
	INSERT OR REPLACE INTO service_feedback
	(service_id, actual_cost, status, user_notes, action_taken, plan,
	 category, projects_json, weights_json, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.Exec(query,
		f.ServiceID,
		actualCost,
		f.Status,
		f.UserNotes,
		f.ActionTaken,
		f.Plan,
		f.Category,
		projectsJSON,
		weightsJSON,
		f.UpdatedAt,
	)
	return err
}

const snapshotColumns = `id, period, recorded_at, total, billable, internal, unassigned,
	       service_count, by_project_json, by_category_json, by_client_json`

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	snap := &Snapshot{}
	var byProject, byCategory, byClient string

	err := row.Scan(
		&snap.ID,
		&snap.Period,
		&snap.RecordedAt,
		&snap.Total,
		&snap.Billable,
		&snap.Internal,
		&snap.Unassigned,
		&snap.ServiceCount,
		&byProject,
		&byCategory,
		&byClient,
	)
	if err != nil {
		return nil, err
	}

	for _, field := range []struct {
		raw  string
		dest *map[string]float64
	}{
		{byProject, &snap.ByProject},
		{byCategory, &snap.ByCategory},
		{byClient, &snap.ByClient},
	} {
		if err := json.Unmarshal([]byte(field.raw), field.dest); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", snap.Period, err)
		}
	}

	return snap, nil
}

// SaveSnapshot stores a snapshot, replacing any existing one for its period
func (s *Storage) SaveSnapshot(snap *Snapshot) error {
	byProject, err := json.Marshal(nonNil(snap.ByProject))
	if err != nil {
		return fmt.Errorf("encode project totals for %s: %w", snap.Period, err)
	}
	byCategory, err := json.Marshal(nonNil(snap.ByCategory))
	if err != nil {
		return fmt.Errorf("encode category totals for %s: %w", snap.Period, err)
	}
	byClient, err := json.Marshal(nonNil(snap.ByClient))
	if err != nil {
		return fmt.Errorf("encode client totals for %s: %w", snap.Period, err)
	}

	query := `
	INSERT OR REPLACE INTO cost_snapshots
	(id, period, recorded_at, total, billable, internal, unassigned,
	 service_count, by_project_json, by_category_json, by_client_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		snap.ID,
		snap.Period,
		snap.RecordedAt,
		snap.Total,
		snap.Billable,
		snap.Internal,
		snap.Unassigned,
		snap.ServiceCount,
		string(byProject),
		string(byCategory),
		string(byClient),
	)
	return err
}

// GetSnapshot retrieves the snapshot for a period.
// Returns nil, nil if none exists.
func (s *Storage) GetSnapshot(period string) (*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM cost_snapshots WHERE period = ?`

	snap, err := scanSnapshot(s.db.QueryRow(query, period))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return snap, err
}

// ListSnapshots returns all snapshots ordered by period ascending
func (s *Storage) ListSnapshots() ([]*Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM cost_snapshots ORDER BY period ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	snapshots := make([]*Snapshot, 0)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

func nonNil(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}
