package service

import (
	"context"
	"time"

	"stacktrack/events"
	"stacktrack/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockBankrollRepository is a mock implementation of BankrollRepository
type MockBankrollRepository struct {
	mock.Mock
}

func (m *MockBankrollRepository) GetByUserID(ctx context.Context, userID string) (*models.Bankroll, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bankroll), args.Error(1)
}

func (m *MockBankrollRepository) Create(ctx context.Context, bankroll *models.Bankroll) error {
	args := m.Called(ctx, bankroll)
	return args.Error(0)
}

func (m *MockBankrollRepository) Exists(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBankrollRepository) SetBalance(ctx context.Context, bankrollID string, newBalance decimal.Decimal) error {
	args := m.Called(ctx, bankrollID, newBalance)
	return args.Error(0)
}

// MockBankrollTransactionRepository is a mock implementation of BankrollTransactionRepository
type MockBankrollTransactionRepository struct {
	mock.Mock
}

func (m *MockBankrollTransactionRepository) Record(ctx context.Context, transaction *models.BankrollTransaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockBankrollTransactionRepository) GetRecent(ctx context.Context, bankrollID string, limit int) ([]*models.BankrollTransaction, error) {
	args := m.Called(ctx, bankrollID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankrollTransaction), args.Error(1)
}

func (m *MockBankrollTransactionRepository) GetSince(ctx context.Context, bankrollID string, since time.Time) ([]*models.BankrollTransaction, error) {
	args := m.Called(ctx, bankrollID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankrollTransaction), args.Error(1)
}

func (m *MockBankrollTransactionRepository) GetAllAscending(ctx context.Context, bankrollID string) ([]*models.BankrollTransaction, error) {
	args := m.Called(ctx, bankrollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankrollTransaction), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetActiveByUser(ctx context.Context, userID string) (*models.SessionDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionDetail), args.Error(1)
}

func (m *MockSessionRepository) GetByIDForUser(ctx context.Context, sessionID, userID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) Complete(ctx context.Context, sessionID string, cashOut decimal.Decimal, endTime time.Time, notes *string) error {
	args := m.Called(ctx, sessionID, cashOut, endTime, notes)
	return args.Error(0)
}

func (m *MockSessionRepository) GetRecentCompleted(ctx context.Context, userID string, limit int) ([]*models.SessionDetail, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SessionDetail), args.Error(1)
}

func (m *MockSessionRepository) Search(ctx context.Context, userID string, filters models.SessionFilters) ([]*models.SessionDetail, error) {
	args := m.Called(ctx, userID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SessionDetail), args.Error(1)
}

func (m *MockSessionRepository) GetCompletedByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Session), args.Error(1)
}

func (m *MockSessionRepository) GetCompletedSince(ctx context.Context, userID string, cutoff time.Time) ([]*models.Session, error) {
	args := m.Called(ctx, userID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Session), args.Error(1)
}

// MockSessionRebuyRepository is a mock implementation of SessionRebuyRepository
type MockSessionRebuyRepository struct {
	mock.Mock
}

func (m *MockSessionRebuyRepository) Create(ctx context.Context, rebuy *models.SessionRebuy) error {
	args := m.Called(ctx, rebuy)
	return args.Error(0)
}

func (m *MockSessionRebuyRepository) GetBySession(ctx context.Context, sessionID string) ([]*models.SessionRebuy, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SessionRebuy), args.Error(1)
}

func (m *MockSessionRebuyRepository) SumBySession(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSessionRebuyRepository) SumsForSessions(ctx context.Context, sessionIDs []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, sessionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// MockSessionNoteRepository is a mock implementation of SessionNoteRepository
type MockSessionNoteRepository struct {
	mock.Mock
}

func (m *MockSessionNoteRepository) Create(ctx context.Context, note *models.SessionNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockSessionNoteRepository) GetBySession(ctx context.Context, sessionID string) ([]*models.SessionNote, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SessionNote), args.Error(1)
}

// MockReferenceRepository is a mock implementation of ReferenceRepository
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) ActivePokerSites(ctx context.Context) ([]*models.PokerSite, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PokerSite), args.Error(1)
}

func (m *MockReferenceRepository) GameTypes(ctx context.Context) ([]*models.GameType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameType), args.Error(1)
}

// MockAnalyticsRepository is a mock implementation of AnalyticsRepository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) DashboardStats(ctx context.Context, userID string) (*models.DashboardStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

// RecordingEventBus captures published events so tests can assert on them
type RecordingEventBus struct {
	Events []events.Event
}

func (b *RecordingEventBus) Publish(event events.Event) {
	b.Events = append(b.Events, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Lifecycle calls go
// through testify expectations; repository accessors return whatever
// SetRepositories installed.
type MockUnitOfWork struct {
	mock.Mock
	bankrollRepo    BankrollRepository
	transactionRepo BankrollTransactionRepository
	sessionRepo     SessionRepository
	rebuyRepo       SessionRebuyRepository
	noteRepo        SessionNoteRepository
	referenceRepo   ReferenceRepository
	analyticsRepo   AnalyticsRepository
	eventBus        *RecordingEventBus
}

// SetRepositories installs the mocks the test cares about; pass nil for the
// rest
func (m *MockUnitOfWork) SetRepositories(
	bankrollRepo BankrollRepository,
	transactionRepo BankrollTransactionRepository,
	sessionRepo SessionRepository,
	rebuyRepo SessionRebuyRepository,
	noteRepo SessionNoteRepository,
) {
	m.bankrollRepo = bankrollRepo
	m.transactionRepo = transactionRepo
	m.sessionRepo = sessionRepo
	m.rebuyRepo = rebuyRepo
	m.noteRepo = noteRepo
}

// SetReferenceRepository installs the reference data mock
func (m *MockUnitOfWork) SetReferenceRepository(repo ReferenceRepository) {
	m.referenceRepo = repo
}

// SetAnalyticsRepository installs the analytics mock
func (m *MockUnitOfWork) SetAnalyticsRepository(repo AnalyticsRepository) {
	m.analyticsRepo = repo
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) BankrollRepository() BankrollRepository {
	return m.bankrollRepo
}

func (m *MockUnitOfWork) BankrollTransactionRepository() BankrollTransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) SessionRepository() SessionRepository {
	return m.sessionRepo
}

func (m *MockUnitOfWork) SessionRebuyRepository() SessionRebuyRepository {
	return m.rebuyRepo
}

func (m *MockUnitOfWork) SessionNoteRepository() SessionNoteRepository {
	return m.noteRepo
}

func (m *MockUnitOfWork) ReferenceRepository() ReferenceRepository {
	return m.referenceRepo
}

func (m *MockUnitOfWork) AnalyticsRepository() AnalyticsRepository {
	return m.analyticsRepo
}

// EventBus returns a recording bus, created lazily so tests can inspect
// published events via PublishedEvents
func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &RecordingEventBus{}
	}
	return m.eventBus
}

// PublishedEvents returns everything published through this unit of work
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	if m.eventBus == nil {
		return nil
	}
	return m.eventBus.Events
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
