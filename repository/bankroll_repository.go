package repository

import (
	"context"
	"fmt"

	"stacktrack/database"
	"stacktrack/models"
	"stacktrack/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BankrollRepository implements the service.BankrollRepository interface
type BankrollRepository struct {
	q queryable
}

// NewBankrollRepository creates a new bankroll repository
func NewBankrollRepository(db *database.DB) *BankrollRepository {
	return &BankrollRepository{q: db.Pool}
}

// newBankrollRepositoryWithTx creates a new bankroll repository with a transaction
func newBankrollRepositoryWithTx(tx queryable) *BankrollRepository {
	return &BankrollRepository{q: tx}
}

// GetByUserID retrieves a user's bankroll, or nil when none exists
func (r *BankrollRepository) GetByUserID(ctx context.Context, userID string) (*models.Bankroll, error) {
	query := `
		SELECT id, user_id, current_amount::text, last_updated
		FROM bankroll
		WHERE user_id = $1
	`

	var bankroll models.Bankroll
	var amount string
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&bankroll.ID,
		&bankroll.UserID,
		&amount,
		&bankroll.LastUpdated,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bankroll for user %s: %w", userID, err)
	}

	bankroll.CurrentAmount, err = parseDecimal(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bankroll balance for user %s: %w", userID, err)
	}

	return &bankroll, nil
}

// Create inserts a new bankroll row
func (r *BankrollRepository) Create(ctx context.Context, bankroll *models.Bankroll) error {
	query := `
		INSERT INTO bankroll (id, user_id, current_amount, last_updated)
		VALUES ($1, $2, $3, NOW())
		RETURNING last_updated
	`

	err := r.q.QueryRow(ctx, query,
		bankroll.ID,
		bankroll.UserID,
		bankroll.CurrentAmount.String(),
	).Scan(&bankroll.LastUpdated)

	if isUniqueViolation(err) {
		return service.NewConflictError("bankroll already exists for user %s", bankroll.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to create bankroll for user %s: %w", bankroll.UserID, err)
	}

	return nil
}

// Exists reports whether the user has a bankroll
func (r *BankrollRepository) Exists(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bankroll WHERE user_id = $1)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check bankroll existence for user %s: %w", userID, err)
	}

	return exists, nil
}

// SetBalance updates the stored running balance and last_updated
func (r *BankrollRepository) SetBalance(ctx context.Context, bankrollID string, newBalance decimal.Decimal) error {
	query := `
		UPDATE bankroll
		SET current_amount = $1, last_updated = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, newBalance.String(), bankrollID)
	if err != nil {
		return fmt.Errorf("failed to update balance for bankroll %s: %w", bankrollID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("bankroll %s not found", bankrollID)
	}

	return nil
}
