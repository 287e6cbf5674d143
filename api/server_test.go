package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stacktrack/models"
	"stacktrack/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// mockBankrollService is a mock implementation of service.BankrollService
type mockBankrollService struct {
	mock.Mock
}

func (m *mockBankrollService) Initialize(ctx context.Context, userID string, amount decimal.Decimal, notes string) (*models.Bankroll, error) {
	args := m.Called(ctx, userID, amount, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bankroll), args.Error(1)
}

func (m *mockBankrollService) ApplyTransaction(ctx context.Context, userID string, amount decimal.Decimal, kind models.TransactionType, notes string) (*models.Bankroll, error) {
	args := m.Called(ctx, userID, amount, kind, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bankroll), args.Error(1)
}

func (m *mockBankrollService) GetSummary(ctx context.Context, userID string) (*models.BankrollSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankrollSummary), args.Error(1)
}

func (m *mockBankrollService) RecentTransactions(ctx context.Context, userID string, days int) ([]*models.BankrollTransaction, error) {
	args := m.Called(ctx, userID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankrollTransaction), args.Error(1)
}

func (m *mockBankrollService) HasBankroll(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBankrollService) Reconcile(ctx context.Context, userID string) (*models.BankrollReconciliation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankrollReconciliation), args.Error(1)
}

// mockSessionService is a mock implementation of service.SessionService
type mockSessionService struct {
	mock.Mock
}

func (m *mockSessionService) Start(ctx context.Context, userID string, input service.StartSessionInput) (*models.Session, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockSessionService) AddRebuy(ctx context.Context, userID, sessionID string, amount decimal.Decimal) (*models.SessionRebuy, error) {
	args := m.Called(ctx, userID, sessionID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionRebuy), args.Error(1)
}

func (m *mockSessionService) AddNote(ctx context.Context, userID, sessionID, content string) (*models.SessionNote, error) {
	args := m.Called(ctx, userID, sessionID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionNote), args.Error(1)
}

func (m *mockSessionService) End(ctx context.Context, userID, sessionID string, cashOut decimal.Decimal, notes string) (*models.Session, error) {
	args := m.Called(ctx, userID, sessionID, cashOut, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockSessionService) GetActive(ctx context.Context, userID string) (*models.SessionDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionDetail), args.Error(1)
}

func (m *mockSessionService) GetRecent(ctx context.Context, userID string, limit int) ([]*models.SessionDetail, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SessionDetail), args.Error(1)
}

func (m *mockSessionService) Search(ctx context.Context, userID string, filters models.SessionFilters) ([]*models.SessionDetail, error) {
	args := m.Called(ctx, userID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SessionDetail), args.Error(1)
}

// mockReferenceService is a mock implementation of service.ReferenceService
type mockReferenceService struct {
	mock.Mock
}

func (m *mockReferenceService) PokerSites(ctx context.Context) ([]*models.PokerSite, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PokerSite), args.Error(1)
}

func (m *mockReferenceService) GameTypes(ctx context.Context) ([]*models.GameType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameType), args.Error(1)
}

// mockAnalyticsService is a mock implementation of service.AnalyticsService
type mockAnalyticsService struct {
	mock.Mock
}

func (m *mockAnalyticsService) DashboardStats(ctx context.Context, userID string) (*models.DashboardStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func (m *mockAnalyticsService) PerformanceMetrics(ctx context.Context, userID string, timeframe service.Timeframe) (*models.PerformanceMetrics, error) {
	args := m.Called(ctx, userID, timeframe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PerformanceMetrics), args.Error(1)
}

func (m *mockAnalyticsService) BankrollGrowth(ctx context.Context, userID string) ([]*models.BankrollGrowthPoint, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankrollGrowthPoint), args.Error(1)
}

func (m *mockAnalyticsService) SessionPerformance(ctx context.Context, userID string, windowDays int) ([]*models.SessionPerformance, error) {
	args := m.Called(ctx, userID, windowDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SessionPerformance), args.Error(1)
}

func (m *mockAnalyticsService) SessionStats(ctx context.Context, userID string) (*models.SessionStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionStats), args.Error(1)
}

type testServer struct {
	bankroll  *mockBankrollService
	session   *mockSessionService
	reference *mockReferenceService
	analytics *mockAnalyticsService
	handler   http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		bankroll:  new(mockBankrollService),
		session:   new(mockSessionService),
		reference: new(mockReferenceService),
		analytics: new(mockAnalyticsService),
	}
	server := NewServer(ts.bankroll, ts.session, ts.reference, ts.analytics, NewAuthenticator(testSecret))
	ts.handler = server.Router()
	return ts
}

func signedToken(t *testing.T, subject, secret string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authedRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "user-1", testSecret))
	return req
}

func TestAuthenticator_MissingToken(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/bankroll", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	ts.bankroll.AssertNotCalled(t, "GetSummary", mock.Anything, mock.Anything)
}

func TestAuthenticator_WrongSecret(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/bankroll", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "user-1", "other-secret"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticator_SubjectReachesHandler(t *testing.T) {
	ts := newTestServer(t)

	summary := &models.BankrollSummary{
		Bankroll: &models.Bankroll{ID: "br-1", UserID: "user-1", CurrentAmount: decimal.NewFromInt(500)},
	}
	ts.bankroll.On("GetSummary", mock.Anything, "user-1").Return(summary, nil)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/bankroll", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"br-1"`)
	ts.bankroll.AssertExpectations(t)
}

func TestHealthzSkipsAuth(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetBankrollSummary_NotInitialized(t *testing.T) {
	ts := newTestServer(t)

	ts.bankroll.On("GetSummary", mock.Anything, "user-1").Return(nil, nil)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/bankroll", ""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitializeBankroll(t *testing.T) {
	ts := newTestServer(t)

	created := &models.Bankroll{ID: "br-1", UserID: "user-1", CurrentAmount: decimal.NewFromInt(1000)}
	ts.bankroll.On("Initialize", mock.Anything, "user-1", mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(1000))
	}), "starting roll").Return(created, nil)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/bankroll",
		`{"amount": 1000, "notes": "starting roll"}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	ts.bankroll.AssertExpectations(t)
}

func TestInitializeBankroll_Conflict(t *testing.T) {
	ts := newTestServer(t)

	ts.bankroll.On("Initialize", mock.Anything, "user-1", mock.Anything, mock.Anything).
		Return(nil, service.NewConflictError("bankroll already exists for user %s", "user-1"))

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/bankroll", `{"amount": 100}`))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApplyTransaction_ValidationFieldsInBody(t *testing.T) {
	ts := newTestServer(t)

	validation := service.NewValidationError("amount", "must be positive")
	ts.bankroll.On("ApplyTransaction", mock.Anything, "user-1", mock.Anything, models.TransactionTypeDeposit, "").
		Return(nil, validation)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/bankroll/transactions",
		`{"amount": -5, "type": "deposit"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amount"`)
}

func TestApplyTransaction_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/bankroll/transactions", `{"amount": `))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ts.bankroll.AssertNotCalled(t, "ApplyTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStartSession(t *testing.T) {
	ts := newTestServer(t)

	started := &models.Session{
		ID:     "sess-1",
		UserID: "user-1",
		Stakes: "$1/$2",
		BuyIn:  decimal.NewFromInt(200),
		Status: models.SessionStatusActive,
	}
	ts.session.On("Start", mock.Anything, "user-1", mock.MatchedBy(func(input service.StartSessionInput) bool {
		return input.Stakes == "$1/$2" && input.BuyIn.Equal(decimal.NewFromInt(200))
	})).Return(started, nil)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/sessions",
		`{"stakes": "$1/$2", "buyIn": 200}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sess-1"`)
}

func TestGetActiveSession_None(t *testing.T) {
	ts := newTestServer(t)

	ts.session.On("GetActive", mock.Anything, "user-1").Return(nil, nil)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/sessions/active", ""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddRebuy_RoutesSessionID(t *testing.T) {
	ts := newTestServer(t)

	rebuy := &models.SessionRebuy{ID: "rb-1", SessionID: "sess-9", Amount: decimal.NewFromInt(100)}
	ts.session.On("AddRebuy", mock.Anything, "user-1", "sess-9", mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(100))
	})).Return(rebuy, nil)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/sessions/sess-9/rebuys", `{"amount": 100}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	ts.session.AssertExpectations(t)
}

func TestEndSession_NotFound(t *testing.T) {
	ts := newTestServer(t)

	ts.session.On("End", mock.Anything, "user-1", "sess-404", mock.Anything, "").
		Return(nil, service.NewNotFoundError("session"))

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/sessions/sess-404/end", `{"cashOut": 50}`))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchSessions_ParsesFilters(t *testing.T) {
	ts := newTestServer(t)

	ts.session.On("Search", mock.Anything, "user-1", mock.MatchedBy(func(f models.SessionFilters) bool {
		return f.SiteID == "site-1" &&
			f.Stakes == "$1/$2" &&
			f.ProfitOnly &&
			f.Limit == 5 &&
			f.DateFrom != nil
	})).Return([]*models.SessionDetail{}, nil)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodGet,
		"/api/sessions?siteId=site-1&stakes=%241%2F%242&profitOnly=true&limit=5&from=2026-01-01T00:00:00Z", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	ts.session.AssertExpectations(t)
}

func TestSearchSessions_BadDate(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/sessions?from=yesterday", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ts.session.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestPerformanceMetrics_DefaultTimeframe(t *testing.T) {
	ts := newTestServer(t)

	metrics := &models.PerformanceMetrics{TotalSessions: 4, NetProfit: decimal.NewFromInt(120)}
	ts.analytics.On("PerformanceMetrics", mock.Anything, "user-1", service.TimeframeMonth).Return(metrics, nil)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/analytics/performance", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	ts.analytics.AssertExpectations(t)
}

func TestReferenceRoutes(t *testing.T) {
	ts := newTestServer(t)

	ts.reference.On("PokerSites", mock.Anything).Return([]*models.PokerSite{
		{ID: "site-1", Name: "PokerStars", Active: true},
	}, nil)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/reference/poker-sites", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PokerStars")
}
