package repository

import (
	"context"
	"fmt"

	"stacktrack/database"
	"stacktrack/models"

	"github.com/shopspring/decimal"
)

// SessionRebuyRepository implements the service.SessionRebuyRepository interface
type SessionRebuyRepository struct {
	q queryable
}

// NewSessionRebuyRepository creates a new rebuy repository
func NewSessionRebuyRepository(db *database.DB) *SessionRebuyRepository {
	return &SessionRebuyRepository{q: db.Pool}
}

// newSessionRebuyRepositoryWithTx creates a new rebuy repository with a transaction
func newSessionRebuyRepositoryWithTx(tx queryable) *SessionRebuyRepository {
	return &SessionRebuyRepository{q: tx}
}

// Create inserts an immutable rebuy row
func (r *SessionRebuyRepository) Create(ctx context.Context, rebuy *models.SessionRebuy) error {
	query := `
		INSERT INTO session_rebuys (id, session_id, amount, timestamp)
		VALUES ($1, $2, $3, NOW())
		RETURNING timestamp
	`

	err := r.q.QueryRow(ctx, query,
		rebuy.ID,
		rebuy.SessionID,
		rebuy.Amount.String(),
	).Scan(&rebuy.Timestamp)

	if err != nil {
		return fmt.Errorf("failed to create rebuy for session %s: %w", rebuy.SessionID, err)
	}

	return nil
}

// GetBySession returns a session's rebuys in timestamp order
func (r *SessionRebuyRepository) GetBySession(ctx context.Context, sessionID string) ([]*models.SessionRebuy, error) {
	query := `
		SELECT id, session_id, amount::text, timestamp
		FROM session_rebuys
		WHERE session_id = $1
		ORDER BY timestamp ASC
	`

	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rebuys for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var rebuys []*models.SessionRebuy
	for rows.Next() {
		var rebuy models.SessionRebuy
		var amount string

		err := rows.Scan(&rebuy.ID, &rebuy.SessionID, &amount, &rebuy.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rebuy: %w", err)
		}

		rebuy.Amount, err = parseDecimal(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rebuy amount: %w", err)
		}

		rebuys = append(rebuys, &rebuy)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rebuys: %w", err)
	}

	return rebuys, nil
}

// SumBySession totals a session's rebuys
func (r *SessionRebuyRepository) SumBySession(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM session_rebuys
		WHERE session_id = $1
	`

	var total string
	if err := r.q.QueryRow(ctx, query, sessionID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum rebuys for session %s: %w", sessionID, err)
	}

	sum, err := parseDecimal(total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse rebuy total for session %s: %w", sessionID, err)
	}

	return sum, nil
}

// SumsForSessions totals rebuys for many sessions at once. Sessions with no
// rebuys are absent from the result map.
func (r *SessionRebuyRepository) SumsForSessions(ctx context.Context, sessionIDs []string) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)
	if len(sessionIDs) == 0 {
		return sums, nil
	}

	query := `
		SELECT session_id, SUM(amount)::text
		FROM session_rebuys
		WHERE session_id = ANY($1)
		GROUP BY session_id
	`

	rows, err := r.q.Query(ctx, query, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum rebuys for %d sessions: %w", len(sessionIDs), err)
	}
	defer rows.Close()

	for rows.Next() {
		var sessionID, total string
		if err := rows.Scan(&sessionID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan rebuy sum: %w", err)
		}

		sum, err := parseDecimal(total)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rebuy sum for session %s: %w", sessionID, err)
		}
		sums[sessionID] = sum
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rebuy sums: %w", err)
	}

	return sums, nil
}
