package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stacktrack/cache"
	"stacktrack/events"
	"stacktrack/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// sessionService implements the SessionService interface
type sessionService struct {
	uowFactory  UnitOfWorkFactory
	activeCache *cache.ActiveSession
}

// NewSessionService creates a new session service
func NewSessionService(uowFactory UnitOfWorkFactory, activeCache *cache.ActiveSession) SessionService {
	return &sessionService{
		uowFactory:  uowFactory,
		activeCache: activeCache,
	}
}

// Start opens an active session and, when a bankroll exists, mirrors the
// buy-in into it as a loss entry in the same transaction
func (s *sessionService) Start(ctx context.Context, userID string, input StartSessionInput) (*models.Session, error) {
	validation := &ValidationError{}
	if strings.TrimSpace(input.Stakes) == "" {
		validation.Add("stakes", "must not be empty")
	}
	if !input.BuyIn.IsPositive() {
		validation.Add("buyIn", "must be positive")
	}
	if len(validation.Fields) > 0 {
		return nil, validation
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	session := &models.Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		GameTypeID: input.GameTypeID,
		SiteID:     input.SiteID,
		Stakes:     strings.TrimSpace(input.Stakes),
		BuyIn:      input.BuyIn,
		Notes:      notesPtr(input.Notes),
		Status:     models.SessionStatusActive,
	}

	// The partial unique index on active sessions turns a concurrent
	// double-start into a ConflictError from the repository
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	if err := s.mirrorIntoBankroll(ctx, uow, userID, models.TransactionTypeLoss, input.BuyIn,
		fmt.Sprintf("Buy-in for session: %s", session.Stakes)); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.SessionStartedEvent{
		UserID:    userID,
		SessionID: session.ID,
		Stakes:    session.Stakes,
		BuyIn:     session.BuyIn,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.activeCache.Invalidate(ctx, userID)
	return session, nil
}

// AddRebuy records a rebuy against the caller's active session and mirrors
// it into the bankroll
func (s *sessionService) AddRebuy(ctx context.Context, userID, sessionID string, amount decimal.Decimal) (*models.SessionRebuy, error) {
	if !amount.IsPositive() {
		return nil, NewValidationError("amount", "must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	session, err := uow.SessionRepository().GetByIDForUser(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.Status != models.SessionStatusActive {
		return nil, NewNotFoundError("active session")
	}

	rebuy := &models.SessionRebuy{
		ID:        uuid.New().String(),
		SessionID: session.ID,
		Amount:    amount,
	}
	if err := uow.SessionRebuyRepository().Create(ctx, rebuy); err != nil {
		return nil, err
	}

	if err := s.mirrorIntoBankroll(ctx, uow, userID, models.TransactionTypeLoss, amount,
		fmt.Sprintf("Rebuy for session: %s", session.Stakes)); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.RebuyAddedEvent{
		UserID:    userID,
		SessionID: session.ID,
		Amount:    amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.activeCache.Invalidate(ctx, userID)
	return rebuy, nil
}

// AddNote appends a note to any session owned by the caller, active or not
func (s *sessionService) AddNote(ctx context.Context, userID, sessionID, content string) (*models.SessionNote, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("content", "must not be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	session, err := uow.SessionRepository().GetByIDForUser(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, NewNotFoundError("session")
	}

	note := &models.SessionNote{
		ID:        uuid.New().String(),
		SessionID: session.ID,
		Content:   strings.TrimSpace(content),
	}
	if err := uow.SessionNoteRepository().Create(ctx, note); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.activeCache.Invalidate(ctx, userID)
	return note, nil
}

// End completes the caller's active session, computes profit against the
// buy-in plus rebuys, and mirrors a positive cash-out into the bankroll
func (s *sessionService) End(ctx context.Context, userID, sessionID string, cashOut decimal.Decimal, notes string) (*models.Session, error) {
	if cashOut.IsNegative() {
		return nil, NewValidationError("cashOut", "must not be negative")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	session, err := uow.SessionRepository().GetByIDForUser(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, NewNotFoundError("session")
	}
	if session.Status != models.SessionStatusActive {
		return nil, NewConflictError("session %s is already completed", sessionID)
	}

	rebuyTotal, err := uow.SessionRebuyRepository().SumBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum rebuys: %w", err)
	}

	totalInvested := session.BuyIn.Add(rebuyTotal)
	profit := cashOut.Sub(totalInvested)
	endTime := time.Now()
	finalNotes := mergeEndNotes(session.Notes, notes)

	if err := uow.SessionRepository().Complete(ctx, session.ID, cashOut, endTime, finalNotes); err != nil {
		return nil, err
	}

	if cashOut.IsPositive() {
		sign := ""
		if profit.Sign() >= 0 {
			sign = "+"
		}
		if err := s.mirrorIntoBankroll(ctx, uow, userID, models.TransactionTypeWinnings, cashOut,
			fmt.Sprintf("Cash out from session: %s (%s%s)", session.Stakes, sign, profit.StringFixed(2))); err != nil {
			return nil, err
		}
	}

	uow.EventBus().Publish(events.SessionEndedEvent{
		UserID:    userID,
		SessionID: session.ID,
		CashOut:   cashOut,
		Profit:    profit,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.activeCache.Invalidate(ctx, userID)

	session.CashOut = &cashOut
	session.EndTime = &endTime
	session.Notes = finalNotes
	session.Status = models.SessionStatusCompleted
	return session, nil
}

// GetActive returns the caller's active session, served from the cache
// within its freshness window. A cached nil marker counts as an answer.
func (s *sessionService) GetActive(ctx context.Context, userID string) (*models.SessionDetail, error) {
	if detail, ok := s.activeCache.Get(ctx, userID); ok {
		return detail, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.SessionRepository().GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.activeCache.Put(ctx, userID, detail)
	return detail, nil
}

// GetRecent returns completed sessions, newest first
func (s *sessionService) GetRecent(ctx context.Context, userID string, limit int) ([]*models.SessionDetail, error) {
	if limit <= 0 {
		limit = 10
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	details, err := uow.SessionRepository().GetRecentCompleted(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent sessions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return details, nil
}

// Search filters completed sessions. Site, game type and date bounds apply
// in the query; stakes substring and profit-only apply here after the fetch.
func (s *sessionService) Search(ctx context.Context, userID string, filters models.SessionFilters) ([]*models.SessionDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	details, err := uow.SessionRepository().Search(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search sessions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	stakesFilter := strings.ToLower(filters.Stakes)
	filtered := make([]*models.SessionDetail, 0, len(details))
	for _, detail := range details {
		if stakesFilter != "" && !strings.Contains(strings.ToLower(detail.Session.Stakes), stakesFilter) {
			continue
		}
		if filters.ProfitOnly && !detail.Profit().IsPositive() {
			continue
		}
		filtered = append(filtered, detail)
	}

	return filtered, nil
}

// mirrorIntoBankroll applies a session cash flow to the bankroll when one
// exists. Users without a bankroll still track sessions; nothing to mirror.
// Session paths allow the balance to go negative, with a warning.
func (s *sessionService) mirrorIntoBankroll(ctx context.Context, uow UnitOfWork, userID string, kind models.TransactionType, amount decimal.Decimal, note string) error {
	bankroll, err := uow.BankrollRepository().GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get bankroll: %w", err)
	}
	if bankroll == nil {
		return nil
	}

	newBalance, err := ApplyBankrollChange(ctx, uow, bankroll, kind, amount, &note)
	if err != nil {
		return err
	}

	if newBalance.IsNegative() {
		log.WithFields(log.Fields{
			"userId":  userID,
			"balance": newBalance.String(),
		}).Warn("Bankroll went negative after session cash flow")
	}

	return nil
}

// mergeEndNotes appends end-of-session notes to any notes the session
// already carries
func mergeEndNotes(existing *string, incoming string) *string {
	trimmed := strings.TrimSpace(incoming)
	if trimmed == "" {
		return existing
	}
	if existing != nil && strings.TrimSpace(*existing) != "" {
		merged := *existing + "\n\nEnd notes: " + trimmed
		return &merged
	}
	return &trimmed
}
