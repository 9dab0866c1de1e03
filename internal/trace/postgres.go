package trace

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/pressly/goose/v3"

	_ "github.com/lib/pq"

	"github.com/hpcsched/batling/internal/types"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// PostgresStore is a PostgreSQL implementation of Store, for runs whose
// trace should survive the process.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database and applies the schema.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &PostgresStore{db: db}

	if err := store.runMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// runMigrations applies the database schema using goose
func (s *PostgresStore) runMigrations() error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// RecordCycle inserts one cycle record.
func (s *PostgresStore) RecordCycle(rec CycleRecord) error {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM cycles WHERE cycle_id = $1)", rec.CycleID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check cycle existence: %w", err)
	}
	if exists {
		return ErrCycleAlreadyExists
	}

	decisionsJSON, err := json.Marshal(rec.Decisions)
	if err != nil {
		return fmt.Errorf("failed to marshal decisions: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO cycles (cycle_id, sim_time, decisions, recorded_at) VALUES ($1, $2, $3, $4)`,
		rec.CycleID, rec.SimTime, decisionsJSON, rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cycle: %w", err)
	}
	return nil
}

// ListCycles returns all recorded cycles in recording order.
func (s *PostgresStore) ListCycles() ([]CycleRecord, error) {
	rows, err := s.db.Query(
		`SELECT cycle_id, sim_time, decisions, recorded_at FROM cycles ORDER BY recorded_at, cycle_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []CycleRecord
	for rows.Next() {
		var rec CycleRecord
		var decisionsJSON []byte
		if err := rows.Scan(&rec.CycleID, &rec.SimTime, &decisionsJSON, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		if err := json.Unmarshal(decisionsJSON, &rec.Decisions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal decisions: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Summary aggregates the recorded cycles.
func (s *PostgresStore) Summary() (Summary, error) {
	cycles, err := s.ListCycles()
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	sum.Cycles = len(cycles)
	for _, rec := range cycles {
		for _, d := range rec.Decisions {
			switch types.DecisionKind(d.Kind) {
			case types.DecisionExecuteJob:
				sum.Starts++
				if rec.SimTime > sum.Makespan {
					sum.Makespan = rec.SimTime
				}
			case types.DecisionRejectJob:
				sum.Rejects++
			}
		}
	}
	return sum, nil
}
