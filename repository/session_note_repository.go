package repository

import (
	"context"
	"fmt"

	"stacktrack/database"
	"stacktrack/models"
)

// SessionNoteRepository implements the service.SessionNoteRepository interface
type SessionNoteRepository struct {
	q queryable
}

// NewSessionNoteRepository creates a new session note repository
func NewSessionNoteRepository(db *database.DB) *SessionNoteRepository {
	return &SessionNoteRepository{q: db.Pool}
}

// newSessionNoteRepositoryWithTx creates a new session note repository with a transaction
func newSessionNoteRepositoryWithTx(tx queryable) *SessionNoteRepository {
	return &SessionNoteRepository{q: tx}
}

// Create appends a note row
func (r *SessionNoteRepository) Create(ctx context.Context, note *models.SessionNote) error {
	query := `
		INSERT INTO session_notes (id, session_id, content, timestamp)
		VALUES ($1, $2, $3, NOW())
		RETURNING timestamp
	`

	err := r.q.QueryRow(ctx, query,
		note.ID,
		note.SessionID,
		note.Content,
	).Scan(&note.Timestamp)

	if err != nil {
		return fmt.Errorf("failed to create note for session %s: %w", note.SessionID, err)
	}

	return nil
}

// GetBySession returns a session's notes in timestamp order
func (r *SessionNoteRepository) GetBySession(ctx context.Context, sessionID string) ([]*models.SessionNote, error) {
	query := `
		SELECT id, session_id, content, timestamp
		FROM session_notes
		WHERE session_id = $1
		ORDER BY timestamp ASC
	`

	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notes for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var notes []*models.SessionNote
	for rows.Next() {
		var note models.SessionNote
		if err := rows.Scan(&note.ID, &note.SessionID, &note.Content, &note.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, &note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}
