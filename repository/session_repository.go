package repository

import (
	"context"
	"fmt"
	"time"

	"stacktrack/database"
	"stacktrack/models"
	"stacktrack/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// SessionRepository implements the service.SessionRepository interface
type SessionRepository struct {
	q queryable
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{q: db.Pool}
}

// newSessionRepositoryWithTx creates a new session repository with a transaction
func newSessionRepositoryWithTx(tx queryable) *SessionRepository {
	return &SessionRepository{q: tx}
}

const sessionDetailColumns = `
	s.id, s.user_id, s.game_type_id, s.site_id, s.stakes, s.start_time, s.end_time,
	s.buy_in::text, s.cash_out::text, s.notes, s.status,
	ps.id, ps.name, ps.url, ps.active,
	gt.id, gt.name, gt.short_name
`

const sessionDetailFrom = `
	FROM sessions s
	LEFT JOIN poker_sites ps ON ps.id = s.site_id
	LEFT JOIN game_types gt ON gt.id = s.game_type_id
`

// Create inserts a new active session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, game_type_id, site_id, stakes, start_time, buy_in, notes, status)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6, $7, $8)
		RETURNING start_time
	`

	err := r.q.QueryRow(ctx, query,
		session.ID,
		session.UserID,
		session.GameTypeID,
		session.SiteID,
		session.Stakes,
		session.BuyIn.String(),
		session.Notes,
		session.Status,
	).Scan(&session.StartTime)

	if isUniqueViolation(err) {
		return service.NewConflictError("an active session already exists for user %s", session.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to create session for user %s: %w", session.UserID, err)
	}

	return nil
}

// GetActiveByUser returns the user's active session with reference rows
// joined and rebuys and notes attached, or nil when none exists
func (r *SessionRepository) GetActiveByUser(ctx context.Context, userID string) (*models.SessionDetail, error) {
	query := `SELECT ` + sessionDetailColumns + sessionDetailFrom + `
		WHERE s.user_id = $1 AND s.status = 'active'
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active session for user %s: %w", userID, err)
	}
	defer rows.Close()

	details, err := r.scanSessionDetails(rows)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}

	detail := details[0]
	if err := r.attachRebuysAndNotes(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// GetByIDForUser returns a session of any status owned by the user,
// or nil when absent or foreign-owned
func (r *SessionRepository) GetByIDForUser(ctx context.Context, sessionID, userID string) (*models.Session, error) {
	query := `
		SELECT id, user_id, game_type_id, site_id, stakes, start_time, end_time,
		       buy_in::text, cash_out::text, notes, status
		FROM sessions
		WHERE id = $1 AND user_id = $2
	`

	session, err := scanSessionRow(r.q.QueryRow(ctx, query, sessionID, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s for user %s: %w", sessionID, userID, err)
	}

	return session, nil
}

// Complete finalizes a session: cash-out, end time, status and notes.
// The status guard makes the active-to-completed transition happen at most
// once; a concurrent completer loses with a ConflictError.
func (r *SessionRepository) Complete(ctx context.Context, sessionID string, cashOut decimal.Decimal, endTime time.Time, notes *string) error {
	query := `
		UPDATE sessions
		SET cash_out = $1, end_time = $2, notes = $3, status = 'completed'
		WHERE id = $4 AND status = 'active'
	`

	result, err := r.q.Exec(ctx, query, cashOut.String(), endTime, notes, sessionID)
	if err != nil {
		return fmt.Errorf("failed to complete session %s: %w", sessionID, err)
	}

	if result.RowsAffected() == 0 {
		return service.NewConflictError("session %s is not active", sessionID)
	}

	return nil
}

// GetRecentCompleted returns completed sessions by end time descending,
// with rebuys and threaded notes attached
func (r *SessionRepository) GetRecentCompleted(ctx context.Context, userID string, limit int) ([]*models.SessionDetail, error) {
	query := `SELECT ` + sessionDetailColumns + sessionDetailFrom + `
		WHERE s.user_id = $1 AND s.status = 'completed'
		ORDER BY s.end_time DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent sessions for user %s: %w", userID, err)
	}
	defer rows.Close()

	details, err := r.scanSessionDetails(rows)
	if err != nil {
		return nil, err
	}

	for _, detail := range details {
		if err := r.attachRebuysAndNotes(ctx, detail); err != nil {
			return nil, err
		}
	}

	return details, nil
}

// Search returns completed sessions matching the query-side filters.
// Stakes substring and profit-only filtering happen in the service layer.
func (r *SessionRepository) Search(ctx context.Context, userID string, filters models.SessionFilters) ([]*models.SessionDetail, error) {
	query := `SELECT ` + sessionDetailColumns + sessionDetailFrom + `
		WHERE s.user_id = $1 AND s.status = 'completed'
	`
	args := []any{userID}

	if filters.SiteID != "" {
		args = append(args, filters.SiteID)
		query += fmt.Sprintf(" AND s.site_id = $%d", len(args))
	}
	if filters.GameTypeID != "" {
		args = append(args, filters.GameTypeID)
		query += fmt.Sprintf(" AND s.game_type_id = $%d", len(args))
	}
	if filters.DateFrom != nil {
		args = append(args, *filters.DateFrom)
		query += fmt.Sprintf(" AND s.start_time >= $%d", len(args))
	}
	if filters.DateTo != nil {
		args = append(args, *filters.DateTo)
		query += fmt.Sprintf(" AND s.end_time <= $%d", len(args))
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY s.end_time DESC LIMIT $%d", len(args))
	args = append(args, filters.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search sessions for user %s: %w", userID, err)
	}
	defer rows.Close()

	details, err := r.scanSessionDetails(rows)
	if err != nil {
		return nil, err
	}

	for _, detail := range details {
		if err := r.attachRebuysAndNotes(ctx, detail); err != nil {
			return nil, err
		}
	}

	return details, nil
}

// GetCompletedByUser returns all completed sessions, no date bound
func (r *SessionRepository) GetCompletedByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	query := `
		SELECT id, user_id, game_type_id, site_id, stakes, start_time, end_time,
		       buy_in::text, cash_out::text, notes, status
		FROM sessions
		WHERE user_id = $1 AND status = 'completed'
		ORDER BY end_time DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed sessions for user %s: %w", userID, err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// GetCompletedSince returns completed sessions with end_time >= cutoff,
// oldest first
func (r *SessionRepository) GetCompletedSince(ctx context.Context, userID string, cutoff time.Time) ([]*models.Session, error) {
	query := `
		SELECT id, user_id, game_type_id, site_id, stakes, start_time, end_time,
		       buy_in::text, cash_out::text, notes, status
		FROM sessions
		WHERE user_id = $1 AND status = 'completed' AND end_time >= $2
		ORDER BY end_time ASC
	`

	rows, err := r.q.Query(ctx, query, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions since %s for user %s: %w", cutoff, userID, err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// attachRebuysAndNotes loads the session's rebuys and resolves the note
// variant: threaded rows win, else the session's freeform column
func (r *SessionRepository) attachRebuysAndNotes(ctx context.Context, detail *models.SessionDetail) error {
	rebuyRepo := &SessionRebuyRepository{q: r.q}
	rebuys, err := rebuyRepo.GetBySession(ctx, detail.Session.ID)
	if err != nil {
		return err
	}
	detail.Rebuys = rebuys

	noteRepo := &SessionNoteRepository{q: r.q}
	thread, err := noteRepo.GetBySession(ctx, detail.Session.ID)
	if err != nil {
		return err
	}

	if len(thread) > 0 {
		detail.Notes = models.ThreadedNotes(thread)
	} else if detail.Session.Notes != nil {
		detail.Notes = models.FreeformNotes(*detail.Session.Notes)
	} else {
		detail.Notes = models.NoNotes()
	}

	return nil
}

func (r *SessionRepository) scanSessionDetails(rows pgx.Rows) ([]*models.SessionDetail, error) {
	var details []*models.SessionDetail
	for rows.Next() {
		var session models.Session
		var buyIn string
		var cashOut *string
		var siteID, siteName, siteURL *string
		var siteActive *bool
		var gameTypeID, gameTypeName, gameTypeShort *string

		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.GameTypeID,
			&session.SiteID,
			&session.Stakes,
			&session.StartTime,
			&session.EndTime,
			&buyIn,
			&cashOut,
			&session.Notes,
			&session.Status,
			&siteID,
			&siteName,
			&siteURL,
			&siteActive,
			&gameTypeID,
			&gameTypeName,
			&gameTypeShort,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if err := applyAmounts(&session, buyIn, cashOut); err != nil {
			return nil, err
		}

		detail := &models.SessionDetail{Session: &session, Notes: models.NoNotes()}
		if siteID != nil {
			detail.Site = &models.PokerSite{ID: *siteID, Name: *siteName, URL: siteURL, Active: *siteActive}
		}
		if gameTypeID != nil {
			detail.GameType = &models.GameType{ID: *gameTypeID, Name: *gameTypeName, ShortName: *gameTypeShort}
		}

		details = append(details, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return details, nil
}

func scanSessionRow(row pgx.Row) (*models.Session, error) {
	var session models.Session
	var buyIn string
	var cashOut *string

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.GameTypeID,
		&session.SiteID,
		&session.Stakes,
		&session.StartTime,
		&session.EndTime,
		&buyIn,
		&cashOut,
		&session.Notes,
		&session.Status,
	)
	if err != nil {
		return nil, err
	}

	if err := applyAmounts(&session, buyIn, cashOut); err != nil {
		return nil, err
	}

	return &session, nil
}

func scanSessions(rows pgx.Rows) ([]*models.Session, error) {
	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSessionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

func applyAmounts(session *models.Session, buyIn string, cashOut *string) error {
	var err error
	session.BuyIn, err = parseDecimal(buyIn)
	if err != nil {
		return fmt.Errorf("failed to parse buy-in for session %s: %w", session.ID, err)
	}

	if cashOut != nil {
		parsed, err := parseDecimal(*cashOut)
		if err != nil {
			return fmt.Errorf("failed to parse cash-out for session %s: %w", session.ID, err)
		}
		session.CashOut = &parsed
	}

	return nil
}
