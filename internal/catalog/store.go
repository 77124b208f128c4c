package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/playperu/climatechance/internal/climate"
)

// SQLStore keeps the catalog in a libSQL table with one JSONB document per
// scenario. The schema comes from the migrations package.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Replace swaps the stored catalog for scenarios in one transaction.
func (s *SQLStore) Replace(ctx context.Context, scenarios []climate.Scenario) error {
	if err := Validate(scenarios); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scenarios`); err != nil {
		return fmt.Errorf("clearing scenarios: %w", err)
	}
	for i, sc := range scenarios {
		data, err := json.Marshal(sc)
		if err != nil {
			return fmt.Errorf("encoding scenario %q: %w", sc.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO scenarios (id, position, title, data) VALUES (?, ?, ?, jsonb(?))`,
			sc.ID, i, sc.Title, string(data),
		)
		if err != nil {
			return fmt.Errorf("inserting scenario %q: %w", sc.ID, err)
		}
	}
	return tx.Commit()
}

// List returns the stored scenarios in catalog order.
func (s *SQLStore) List(ctx context.Context) ([]climate.Scenario, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT json(data) FROM scenarios ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying scenarios: %w", err)
	}
	defer rows.Close()

	var out []climate.Scenario
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var sc climate.Scenario
		if err := json.Unmarshal([]byte(data), &sc); err != nil {
			return nil, fmt.Errorf("decoding scenario: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of stored scenarios.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scenarios`).Scan(&n)
	return n, err
}

// Seed stores scenarios only if the table is empty.
// Idempotent: does nothing once a catalog exists.
func (s *SQLStore) Seed(ctx context.Context, scenarios []climate.Scenario) (bool, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := s.Replace(ctx, scenarios); err != nil {
		return false, err
	}
	return true, nil
}
