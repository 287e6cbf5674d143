package service

import (
	"context"
	"fmt"
	"time"

	"stacktrack/events"
	"stacktrack/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// bankrollService implements the BankrollService interface
type bankrollService struct {
	uowFactory UnitOfWorkFactory
}

// NewBankrollService creates a new bankroll service
func NewBankrollService(uowFactory UnitOfWorkFactory) BankrollService {
	return &bankrollService{
		uowFactory: uowFactory,
	}
}

// Initialize creates the user's bankroll and, for a non-zero starting amount,
// the opening deposit entry. Both rows land in one transaction.
func (s *bankrollService) Initialize(ctx context.Context, userID string, amount decimal.Decimal, notes string) (*models.Bankroll, error) {
	if amount.IsNegative() {
		return nil, NewValidationError("amount", "must not be negative")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	exists, err := uow.BankrollRepository().Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing bankroll: %w", err)
	}
	if exists {
		return nil, NewConflictError("bankroll already exists for user %s", userID)
	}

	// The unique constraint on user_id backstops the check above, so the
	// loser of a concurrent initialization gets a ConflictError here
	bankroll := &models.Bankroll{
		ID:            uuid.New().String(),
		UserID:        userID,
		CurrentAmount: amount,
	}
	if err := uow.BankrollRepository().Create(ctx, bankroll); err != nil {
		return nil, err
	}

	if amount.IsPositive() {
		transaction := &models.BankrollTransaction{
			ID:         uuid.New().String(),
			BankrollID: bankroll.ID,
			Type:       models.TransactionTypeDeposit,
			Amount:     amount,
			Notes:      notesPtr(notes),
		}
		if err := uow.BankrollTransactionRepository().Record(ctx, transaction); err != nil {
			return nil, fmt.Errorf("failed to record initial deposit: %w", err)
		}

		uow.EventBus().Publish(events.BankrollChangeEvent{
			UserID:          userID,
			BankrollID:      bankroll.ID,
			OldBalance:      decimal.Zero,
			NewBalance:      amount,
			TransactionType: models.TransactionTypeDeposit,
			Amount:          amount,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bankroll, nil
}

// ApplyTransaction records a deposit or withdrawal atomically with the
// balance update
func (s *bankrollService) ApplyTransaction(ctx context.Context, userID string, amount decimal.Decimal, kind models.TransactionType, notes string) (*models.Bankroll, error) {
	validation := &ValidationError{}
	if !amount.IsPositive() {
		validation.Add("amount", "must be positive")
	}
	if kind != models.TransactionTypeDeposit && kind != models.TransactionTypeWithdrawal {
		validation.Add("type", "must be deposit or withdrawal")
	}
	if len(validation.Fields) > 0 {
		return nil, validation
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bankroll, err := uow.BankrollRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bankroll: %w", err)
	}
	if bankroll == nil {
		return nil, NewNotFoundError("bankroll")
	}

	if kind == models.TransactionTypeWithdrawal && amount.GreaterThan(bankroll.CurrentAmount) {
		return nil, NewConflictError("insufficient funds: balance is %s, withdrawal is %s",
			bankroll.CurrentAmount.String(), amount.String())
	}

	if _, err := ApplyBankrollChange(ctx, uow, bankroll, kind, amount, notesPtr(notes)); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bankroll, nil
}

// GetSummary returns the bankroll with its five most recent transactions,
// or nil when no bankroll exists
func (s *bankrollService) GetSummary(ctx context.Context, userID string) (*models.BankrollSummary, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bankroll, err := uow.BankrollRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bankroll: %w", err)
	}
	if bankroll == nil {
		return nil, nil
	}

	transactions, err := uow.BankrollTransactionRepository().GetRecent(ctx, bankroll.ID, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent transactions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.BankrollSummary{
		Bankroll:     bankroll,
		Transactions: transactions,
	}, nil
}

// RecentTransactions returns transactions from the last N days, newest first
func (s *bankrollService) RecentTransactions(ctx context.Context, userID string, days int) ([]*models.BankrollTransaction, error) {
	if days <= 0 {
		return nil, NewValidationError("days", "must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bankroll, err := uow.BankrollRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bankroll: %w", err)
	}
	if bankroll == nil {
		return nil, NewNotFoundError("bankroll")
	}

	since := time.Now().AddDate(0, 0, -days)
	transactions, err := uow.BankrollTransactionRepository().GetSince(ctx, bankroll.ID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return transactions, nil
}

// HasBankroll reports whether the user initialized a bankroll
func (s *bankrollService) HasBankroll(ctx context.Context, userID string) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	exists, err := uow.BankrollRepository().Exists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check bankroll: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return exists, nil
}

// Reconcile replays the transaction log against the stored balance. The
// stored balance stays authoritative; drift means the log and balance
// disagree and deserve a look.
func (s *bankrollService) Reconcile(ctx context.Context, userID string) (*models.BankrollReconciliation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bankroll, err := uow.BankrollRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bankroll: %w", err)
	}
	if bankroll == nil {
		return nil, NewNotFoundError("bankroll")
	}

	transactions, err := uow.BankrollTransactionRepository().GetAllAscending(ctx, bankroll.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction log: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	replayed := decimal.Zero
	for _, transaction := range transactions {
		replayed = replayed.Add(transaction.SignedAmount())
	}

	return &models.BankrollReconciliation{
		StoredBalance:    bankroll.CurrentAmount,
		ReplayedBalance:  replayed,
		Drift:            bankroll.CurrentAmount.Sub(replayed),
		TransactionCount: len(transactions),
	}, nil
}
