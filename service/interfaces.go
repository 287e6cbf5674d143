package service

import (
	"context"
	"time"

	"stacktrack/events"
	"stacktrack/models"

	"github.com/shopspring/decimal"
)

// BankrollRepository defines the interface for bankroll data access
type BankrollRepository interface {
	// GetByUserID retrieves a user's bankroll, or nil when none exists
	GetByUserID(ctx context.Context, userID string) (*models.Bankroll, error)

	// Create inserts a new bankroll row; returns ConflictError on the
	// per-user uniqueness constraint
	Create(ctx context.Context, bankroll *models.Bankroll) error

	// Exists reports whether the user has a bankroll
	Exists(ctx context.Context, userID string) (bool, error)

	// SetBalance updates the stored running balance and last_updated
	SetBalance(ctx context.Context, bankrollID string, newBalance decimal.Decimal) error
}

// BankrollTransactionRepository defines the interface for the transaction log
type BankrollTransactionRepository interface {
	// Record inserts an immutable ledger entry
	Record(ctx context.Context, transaction *models.BankrollTransaction) error

	// GetRecent returns the latest transactions, newest first
	GetRecent(ctx context.Context, bankrollID string, limit int) ([]*models.BankrollTransaction, error)

	// GetSince returns transactions with timestamp >= since, newest first
	GetSince(ctx context.Context, bankrollID string, since time.Time) ([]*models.BankrollTransaction, error)

	// GetAllAscending returns the full log in timestamp order for replay
	GetAllAscending(ctx context.Context, bankrollID string) ([]*models.BankrollTransaction, error)
}

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	// Create inserts a new active session; returns ConflictError on the
	// one-active-per-user constraint
	Create(ctx context.Context, session *models.Session) error

	// GetActiveByUser returns the user's active session with site and game
	// type joined and rebuys attached, or nil when none exists
	GetActiveByUser(ctx context.Context, userID string) (*models.SessionDetail, error)

	// GetByIDForUser returns a session of any status owned by the user,
	// or nil when absent or foreign-owned
	GetByIDForUser(ctx context.Context, sessionID, userID string) (*models.Session, error)

	// Complete finalizes a session: cash-out, end time, status and notes
	Complete(ctx context.Context, sessionID string, cashOut decimal.Decimal, endTime time.Time, notes *string) error

	// GetRecentCompleted returns completed sessions by end time descending,
	// with rebuys and threaded notes attached
	GetRecentCompleted(ctx context.Context, userID string, limit int) ([]*models.SessionDetail, error)

	// Search returns completed sessions matching the query-side filters
	Search(ctx context.Context, userID string, filters models.SessionFilters) ([]*models.SessionDetail, error)

	// GetCompletedByUser returns all completed sessions, no date bound
	GetCompletedByUser(ctx context.Context, userID string) ([]*models.Session, error)

	// GetCompletedSince returns completed sessions with end_time >= cutoff,
	// oldest first
	GetCompletedSince(ctx context.Context, userID string, cutoff time.Time) ([]*models.Session, error)
}

// SessionRebuyRepository defines the interface for rebuy data access
type SessionRebuyRepository interface {
	// Create inserts an immutable rebuy row
	Create(ctx context.Context, rebuy *models.SessionRebuy) error

	// GetBySession returns a session's rebuys in timestamp order
	GetBySession(ctx context.Context, sessionID string) ([]*models.SessionRebuy, error)

	// SumBySession totals a session's rebuys
	SumBySession(ctx context.Context, sessionID string) (decimal.Decimal, error)

	// SumsForSessions totals rebuys for many sessions at once
	SumsForSessions(ctx context.Context, sessionIDs []string) (map[string]decimal.Decimal, error)
}

// SessionNoteRepository defines the interface for threaded session notes
type SessionNoteRepository interface {
	// Create appends a note row
	Create(ctx context.Context, note *models.SessionNote) error

	// GetBySession returns a session's notes in timestamp order
	GetBySession(ctx context.Context, sessionID string) ([]*models.SessionNote, error)
}

// ReferenceRepository defines read-only access to the lookup tables
type ReferenceRepository interface {
	// ActivePokerSites returns active sites ordered by name
	ActivePokerSites(ctx context.Context) ([]*models.PokerSite, error)

	// GameTypes returns all game types ordered by name
	GameTypes(ctx context.Context) ([]*models.GameType, error)
}

// AnalyticsRepository runs the aggregate queries behind the dashboard
type AnalyticsRepository interface {
	// DashboardStats aggregates all completed sessions for the user
	DashboardStats(ctx context.Context, userID string) (*models.DashboardStats, error)
}

// EventPublisher publishes events to be dispatched after commit
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork provides transactional access to all repositories
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	BankrollRepository() BankrollRepository
	BankrollTransactionRepository() BankrollTransactionRepository
	SessionRepository() SessionRepository
	SessionRebuyRepository() SessionRebuyRepository
	SessionNoteRepository() SessionNoteRepository
	ReferenceRepository() ReferenceRepository
	AnalyticsRepository() AnalyticsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// StartSessionInput carries the fields for starting a session
type StartSessionInput struct {
	Stakes     string
	BuyIn      decimal.Decimal
	SiteID     *string
	GameTypeID *string
	Notes      string
}

// Timeframe is a lookback window for performance metrics
type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

// BankrollService manages the bankroll and its transaction log
type BankrollService interface {
	// Initialize creates the user's bankroll; ConflictError if one exists
	Initialize(ctx context.Context, userID string, amount decimal.Decimal, notes string) (*models.Bankroll, error)

	// ApplyTransaction records a deposit or withdrawal atomically with the
	// balance update; ConflictError when a withdrawal exceeds the balance
	ApplyTransaction(ctx context.Context, userID string, amount decimal.Decimal, kind models.TransactionType, notes string) (*models.Bankroll, error)

	// GetSummary returns the bankroll with its five most recent
	// transactions, or nil when no bankroll exists
	GetSummary(ctx context.Context, userID string) (*models.BankrollSummary, error)

	// RecentTransactions returns transactions from the last N days,
	// newest first
	RecentTransactions(ctx context.Context, userID string, days int) ([]*models.BankrollTransaction, error)

	// HasBankroll reports whether the user initialized a bankroll
	HasBankroll(ctx context.Context, userID string) (bool, error)

	// Reconcile replays the transaction log against the stored balance
	Reconcile(ctx context.Context, userID string) (*models.BankrollReconciliation, error)
}

// SessionService manages the session lifecycle and mirrors cash flow into
// the bankroll
type SessionService interface {
	// Start opens an active session; ConflictError when one exists
	Start(ctx context.Context, userID string, input StartSessionInput) (*models.Session, error)

	// AddRebuy records a rebuy against the caller's active session
	AddRebuy(ctx context.Context, userID, sessionID string, amount decimal.Decimal) (*models.SessionRebuy, error)

	// AddNote appends a note to any session owned by the caller
	AddNote(ctx context.Context, userID, sessionID, content string) (*models.SessionNote, error)

	// End completes the caller's active session and computes profit
	End(ctx context.Context, userID, sessionID string, cashOut decimal.Decimal, notes string) (*models.Session, error)

	// GetActive returns the caller's active session, cached within the
	// freshness window
	GetActive(ctx context.Context, userID string) (*models.SessionDetail, error)

	// GetRecent returns completed sessions, newest first
	GetRecent(ctx context.Context, userID string, limit int) ([]*models.SessionDetail, error)

	// Search filters completed sessions
	Search(ctx context.Context, userID string, filters models.SessionFilters) ([]*models.SessionDetail, error)
}

// ReferenceService exposes the lookup tables
type ReferenceService interface {
	PokerSites(ctx context.Context) ([]*models.PokerSite, error)
	GameTypes(ctx context.Context) ([]*models.GameType, error)
}

// AnalyticsService derives read-side statistics from completed sessions and
// the bankroll transaction log
type AnalyticsService interface {
	DashboardStats(ctx context.Context, userID string) (*models.DashboardStats, error)
	PerformanceMetrics(ctx context.Context, userID string, timeframe Timeframe) (*models.PerformanceMetrics, error)
	BankrollGrowth(ctx context.Context, userID string) ([]*models.BankrollGrowthPoint, error)
	SessionPerformance(ctx context.Context, userID string, windowDays int) ([]*models.SessionPerformance, error)
	SessionStats(ctx context.Context, userID string) (*models.SessionStats, error)
}
