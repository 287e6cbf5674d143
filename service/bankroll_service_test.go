package service

import (
	"context"
	"testing"
	"time"

	"stacktrack/events"
	"stacktrack/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBankrollService_Initialize(t *testing.T) {
	ctx := context.Background()

	// Setup mocks
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBankrollRepo := new(MockBankrollRepository)
	mockTransactionRepo := new(MockBankrollTransactionRepository)

	mockUoW.SetRepositories(mockBankrollRepo, mockTransactionRepo, nil, nil, nil)

	service := NewBankrollService(mockFactory)

	// Mock expectations
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBankrollRepo.On("Exists", ctx, "user-1").Return(false, nil)
	mockBankrollRepo.On("Create", ctx, mock.MatchedBy(func(b *models.Bankroll) bool {
		return b.UserID == "user-1" && b.CurrentAmount.Equal(decimal.NewFromInt(500))
	})).Return(nil)
	mockTransactionRepo.On("Record", ctx, mock.MatchedBy(func(tx *models.BankrollTransaction) bool {
		return tx.Type == models.TransactionTypeDeposit && tx.Amount.Equal(decimal.NewFromInt(500))
	})).Return(nil)

	bankroll, err := service.Initialize(ctx, "user-1", decimal.NewFromInt(500), "starting roll")

	assert.NoError(t, err)
	assert.NotNil(t, bankroll)
	assert.Equal(t, "user-1", bankroll.UserID)
	assert.True(t, bankroll.CurrentAmount.Equal(decimal.NewFromInt(500)))

	// The opening deposit event is stashed for post-commit dispatch
	published := mockUoW.PublishedEvents()
	assert.Len(t, published, 1)
	change := published[0].(events.BankrollChangeEvent)
	assert.True(t, change.OldBalance.IsZero())
	assert.True(t, change.NewBalance.Equal(decimal.NewFromInt(500)))

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockBankrollRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
}

func TestBankrollService_Initialize_ZeroAmountSkipsLedger(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBankrollRepo := new(MockBankrollRepository)
	mockTransactionRepo := new(MockBankrollTransactionRepository)

	mockUoW.SetRepositories(mockBankrollRepo, mockTransactionRepo, nil, nil, nil)

	service := NewBankrollService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBankrollRepo.On("Exists", ctx, "user-1").Return(false, nil)
	mockBankrollRepo.On("Create", ctx, mock.AnythingOfType("*models.Bankroll")).Return(nil)

	bankroll, err := service.Initialize(ctx, "user-1", decimal.Zero, "")

	assert.NoError(t, err)
	assert.NotNil(t, bankroll)
	assert.Empty(t, mockUoW.PublishedEvents())

	// No ledger entry for a zero opening balance
	mockTransactionRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestBankrollService_Initialize_AlreadyExists(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBankrollRepo := new(MockBankrollRepository)

	mockUoW.SetRepositories(mockBankrollRepo, nil, nil, nil, nil)

	service := NewBankrollService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBankrollRepo.On("Exists", ctx, "user-1").Return(true, nil)

	bankroll, err := service.Initialize(ctx, "user-1", decimal.NewFromInt(100), "")

	assert.Nil(t, bankroll)
	assert.True(t, IsConflict(err))
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBankrollService_Initialize_NegativeAmount(t *testing.T) {
	mockFactory := new(MockUnitOfWorkFactory)
	service := NewBankrollService(mockFactory)

	bankroll, err := service.Initialize(context.Background(), "user-1", decimal.NewFromInt(-50), "")

	assert.Nil(t, bankroll)
	assert.True(t, IsValidation(err))
	mockFactory.AssertNotCalled(t, "Create")
}

func TestBankrollService_ApplyTransaction_Deposit(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBankrollRepo := new(MockBankrollRepository)
	mockTransactionRepo := new(MockBankrollTransactionRepository)

	mockUoW.SetRepositories(mockBankrollRepo, mockTransactionRepo, nil, nil, nil)

	service := NewBankrollService(mockFactory)

	existing := &models.Bankroll{
		ID:            "br-1",
		UserID:        "user-1",
		CurrentAmount: decimal.NewFromInt(1000),
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBankrollRepo.On("GetByUserID", ctx, "user-1").Return(existing, nil)
	mockBankrollRepo.On("SetBalance", ctx, "br-1", mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(1250))
	})).Return(nil)
	mockTransactionRepo.On("Record", ctx, mock.MatchedBy(func(tx *models.BankrollTransaction) bool {
		return tx.BankrollID == "br-1" &&
			tx.Type == models.TransactionTypeDeposit &&
			tx.Amount.Equal(decimal.NewFromInt(250))
	})).Return(nil)

	bankroll, err := service.ApplyTransaction(ctx, "user-1", decimal.NewFromInt(250), models.TransactionTypeDeposit, "payday")

	assert.NoError(t, err)
	assert.True(t, bankroll.CurrentAmount.Equal(decimal.NewFromInt(1250)))

	mockBankrollRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
}

func TestBankrollService_ApplyTransaction_WithdrawalInsufficientFunds(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBankrollRepo := new(MockBankrollRepository)

	mockUoW.SetRepositories(mockBankrollRepo, nil, nil, nil, nil)

	service := NewBankrollService(mockFactory)

	existing := &models.Bankroll{
		ID:            "br-1",
		UserID:        "user-1",
		CurrentAmount: decimal.NewFromInt(100),
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBankrollRepo.On("GetByUserID", ctx, "user-1").Return(existing, nil)

	bankroll, err := service.ApplyTransaction(ctx, "user-1", decimal.NewFromInt(500), models.TransactionTypeWithdrawal, "")

	assert.Nil(t, bankroll)
	assert.True(t, IsConflict(err))
	// Balance untouched on the failing path
	assert.True(t, existing.CurrentAmount.Equal(decimal.NewFromInt(100)))
	mockBankrollRepo.AssertNotCalled(t, "SetBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestBankrollService_ApplyTransaction_RejectsSessionTypes(t *testing.T) {
	mockFactory := new(MockUnitOfWorkFactory)
	service := NewBankrollService(mockFactory)

	// winnings and loss only enter via the session lifecycle
	_, err := service.ApplyTransaction(context.Background(), "user-1", decimal.NewFromInt(10), models.TransactionTypeWinnings, "")
	assert.True(t, IsValidation(err))

	_, err = service.ApplyTransaction(context.Background(), "user-1", decimal.NewFromInt(10), models.TransactionTypeLoss, "")
	assert.True(t, IsValidation(err))

	mockFactory.AssertNotCalled(t, "Create")
}

func TestBankrollService_ApplyTransaction_NoBankroll(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBankrollRepo := new(MockBankrollRepository)

	mockUoW.SetRepositories(mockBankrollRepo, nil, nil, nil, nil)

	service := NewBankrollService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBankrollRepo.On("GetByUserID", ctx, "user-1").Return(nil, nil)

	bankroll, err := service.ApplyTransaction(ctx, "user-1", decimal.NewFromInt(50), models.TransactionTypeDeposit, "")

	assert.Nil(t, bankroll)
	assert.True(t, IsNotFound(err))
}

func TestBankrollService_GetSummary(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBankrollRepo := new(MockBankrollRepository)
	mockTransactionRepo := new(MockBankrollTransactionRepository)

	mockUoW.SetRepositories(mockBankrollRepo, mockTransactionRepo, nil, nil, nil)

	service := NewBankrollService(mockFactory)

	existing := &models.Bankroll{ID: "br-1", UserID: "user-1", CurrentAmount: decimal.NewFromInt(750)}
	recent := []*models.BankrollTransaction{
		{ID: "tx-2", BankrollID: "br-1", Type: models.TransactionTypeWithdrawal, Amount: decimal.NewFromInt(250)},
		{ID: "tx-1", BankrollID: "br-1", Type: models.TransactionTypeDeposit, Amount: decimal.NewFromInt(1000)},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBankrollRepo.On("GetByUserID", ctx, "user-1").Return(existing, nil)
	mockTransactionRepo.On("GetRecent", ctx, "br-1", 5).Return(recent, nil)

	summary, err := service.GetSummary(ctx, "user-1")

	assert.NoError(t, err)
	assert.Equal(t, existing, summary.Bankroll)
	assert.Len(t, summary.Transactions, 2)
}

func TestBankrollService_GetSummary_NoBankroll(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBankrollRepo := new(MockBankrollRepository)

	mockUoW.SetRepositories(mockBankrollRepo, nil, nil, nil, nil)

	service := NewBankrollService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBankrollRepo.On("GetByUserID", ctx, "user-1").Return(nil, nil)

	summary, err := service.GetSummary(ctx, "user-1")

	assert.NoError(t, err)
	assert.Nil(t, summary)
}

func TestBankrollService_Reconcile(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBankrollRepo := new(MockBankrollRepository)
	mockTransactionRepo := new(MockBankrollTransactionRepository)

	mockUoW.SetRepositories(mockBankrollRepo, mockTransactionRepo, nil, nil, nil)

	service := NewBankrollService(mockFactory)

	existing := &models.Bankroll{ID: "br-1", UserID: "user-1", CurrentAmount: decimal.NewFromInt(900)}
	log := []*models.BankrollTransaction{
		{Type: models.TransactionTypeDeposit, Amount: decimal.NewFromInt(1000), Timestamp: time.Now().Add(-2 * time.Hour)},
		{Type: models.TransactionTypeLoss, Amount: decimal.NewFromInt(300), Timestamp: time.Now().Add(-time.Hour)},
		{Type: models.TransactionTypeWinnings, Amount: decimal.NewFromInt(200), Timestamp: time.Now()},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBankrollRepo.On("GetByUserID", ctx, "user-1").Return(existing, nil)
	mockTransactionRepo.On("GetAllAscending", ctx, "br-1").Return(log, nil)

	reconciliation, err := service.Reconcile(ctx, "user-1")

	assert.NoError(t, err)
	assert.True(t, reconciliation.ReplayedBalance.Equal(decimal.NewFromInt(900)))
	assert.True(t, reconciliation.Drift.IsZero())
	assert.True(t, reconciliation.InBalance())
	assert.Equal(t, 3, reconciliation.TransactionCount)
}

func TestBankrollService_Reconcile_ReportsDrift(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBankrollRepo := new(MockBankrollRepository)
	mockTransactionRepo := new(MockBankrollTransactionRepository)

	mockUoW.SetRepositories(mockBankrollRepo, mockTransactionRepo, nil, nil, nil)

	service := NewBankrollService(mockFactory)

	existing := &models.Bankroll{ID: "br-1", UserID: "user-1", CurrentAmount: decimal.NewFromInt(950)}
	log := []*models.BankrollTransaction{
		{Type: models.TransactionTypeDeposit, Amount: decimal.NewFromInt(900), Timestamp: time.Now()},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBankrollRepo.On("GetByUserID", ctx, "user-1").Return(existing, nil)
	mockTransactionRepo.On("GetAllAscending", ctx, "br-1").Return(log, nil)

	reconciliation, err := service.Reconcile(ctx, "user-1")

	assert.NoError(t, err)
	assert.True(t, reconciliation.Drift.Equal(decimal.NewFromInt(50)))
	assert.False(t, reconciliation.InBalance())
}
