package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/proullon/ramsql/driver"

	"github.com/smartcontractkit/domain-coordinator/coordination"
	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/value"
)

var ErrEntryNotFound = errors.New("history entry not found")

const (
	schemaOutcomes = `
		CREATE TABLE IF NOT EXISTS domain_outcomes (
			invocation_id  TEXT PRIMARY KEY,
			op_name        TEXT,
			address        TEXT,
			outcome        TEXT,
			response       TEXT,
			recorded_at    BIGINT
		);`

	queryInsertOutcome = `
		INSERT INTO domain_outcomes (invocation_id, op_name, address, outcome, response, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	queryOutcomeByID = `
		SELECT invocation_id, op_name, address, outcome, response, recorded_at FROM domain_outcomes
		WHERE invocation_id = $1`
	queryRecentOutcomes = `
		SELECT invocation_id, op_name, address, outcome, response, recorded_at FROM domain_outcomes
		ORDER BY recorded_at DESC`
)

// Entry is one finalized operation.
type Entry struct {
	InvocationID string
	Operation    string
	Address      string
	Outcome      string
	Response     value.Node
	RecordedAt   time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used to timestamp entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store keeps the finalized outcomes of domain operations in a SQL database. The postgres
// driver is used in deployments; ramsql gives an in-process store for the CLI and tests, where
// each data source name is a separate database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s history store: %w", driver, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to reach %s history store: %w", driver, err)
	}

	s, err := New(ctx, db, opts...)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return s, nil
}

// New wraps an open database and creates the schema if needed.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := db.ExecContext(ctx, schemaOutcomes); err != nil {
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores the finalized outcome of op.
func (s *Store) Record(ctx context.Context, invocationID string, op operation.Descriptor, exec *coordination.ExecutionContext) error {
	resp, err := exec.Response().MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode response of %s: %w", invocationID, err)
	}

	_, err = s.db.ExecContext(ctx, queryInsertOutcome,
		invocationID, op.Name, op.Address.String(), exec.Outcome(), string(resp), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record outcome of %s: %w", invocationID, err)
	}

	return nil
}

// Get returns the entry of one invocation.
// Returns ErrEntryNotFound if there is none.
func (s *Store) Get(ctx context.Context, invocationID string) (Entry, error) {
	rows, err := s.db.QueryContext(ctx, queryOutcomeByID, invocationID)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query outcome of %s: %w", invocationID, err)
	}
	entries, err := scanEntries(rows, 1)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("invocation %s: %w", invocationID, ErrEntryNotFound)
	}

	return entries[0], nil
}

// List returns up to limit entries, newest first. A limit of zero or less returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, queryRecentOutcomes)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}

	return scanEntries(rows, limit)
}

func scanEntries(rows *sql.Rows, limit int) (entries []Entry, err error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	for rows.Next() {
		if limit > 0 && len(entries) == limit {
			break
		}
		var (
			e          Entry
			response   string
			recordedAt int64
		)
		if err = rows.Scan(&e.InvocationID, &e.Operation, &e.Address, &e.Outcome, &response, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		if e.Response, err = value.ParseJSON([]byte(response)); err != nil {
			return nil, fmt.Errorf("failed to decode response of %s: %w", e.InvocationID, err)
		}
		e.RecordedAt = time.UnixMilli(recordedAt)
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outcomes: %w", err)
	}

	return entries, nil
}
