package service

import (
	"context"
	"fmt"
	"strings"

	"stacktrack/events"
	"stacktrack/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplyBankrollChange moves the stored balance and records the matching
// ledger entry, then emits the change event for dispatch after commit.
// This is the single entry point for all bankroll mutations, so balance and
// log can never move independently.
func ApplyBankrollChange(ctx context.Context, uow UnitOfWork, bankroll *models.Bankroll, kind models.TransactionType, amount decimal.Decimal, notes *string) (decimal.Decimal, error) {
	transaction := &models.BankrollTransaction{
		ID:         uuid.New().String(),
		BankrollID: bankroll.ID,
		Type:       kind,
		Amount:     amount,
		Notes:      notes,
	}

	oldBalance := bankroll.CurrentAmount
	newBalance := oldBalance.Add(transaction.SignedAmount())

	if err := uow.BankrollRepository().SetBalance(ctx, bankroll.ID, newBalance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}

	if err := uow.BankrollTransactionRepository().Record(ctx, transaction); err != nil {
		return decimal.Zero, fmt.Errorf("failed to record transaction: %w", err)
	}

	// Emit balance change event (will be flushed after transaction commits)
	uow.EventBus().Publish(events.BankrollChangeEvent{
		UserID:          bankroll.UserID,
		BankrollID:      bankroll.ID,
		OldBalance:      oldBalance,
		NewBalance:      newBalance,
		TransactionType: kind,
		Amount:          amount,
	})

	bankroll.CurrentAmount = newBalance
	return newBalance, nil
}

// notesPtr trims the input and returns nil for an empty string, so optional
// note fields store NULL rather than ""
func notesPtr(notes string) *string {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
