package repository

import (
	"context"
	"fmt"
	"time"

	"stacktrack/database"
	"stacktrack/models"

	"github.com/jackc/pgx/v5"
)

// BankrollTransactionRepository implements the service.BankrollTransactionRepository interface
type BankrollTransactionRepository struct {
	q queryable
}

// NewBankrollTransactionRepository creates a new transaction log repository
func NewBankrollTransactionRepository(db *database.DB) *BankrollTransactionRepository {
	return &BankrollTransactionRepository{q: db.Pool}
}

// newBankrollTransactionRepositoryWithTx creates a new transaction log repository with a transaction
func newBankrollTransactionRepositoryWithTx(tx queryable) *BankrollTransactionRepository {
	return &BankrollTransactionRepository{q: tx}
}

// Record inserts an immutable ledger entry
func (r *BankrollTransactionRepository) Record(ctx context.Context, transaction *models.BankrollTransaction) error {
	query := `
		INSERT INTO bankroll_transactions (id, bankroll_id, type, amount, timestamp, notes)
		VALUES ($1, $2, $3, $4, NOW(), $5)
		RETURNING timestamp
	`

	err := r.q.QueryRow(ctx, query,
		transaction.ID,
		transaction.BankrollID,
		transaction.Type,
		transaction.Amount.String(),
		transaction.Notes,
	).Scan(&transaction.Timestamp)

	if err != nil {
		return fmt.Errorf("failed to record transaction for bankroll %s: %w", transaction.BankrollID, err)
	}

	return nil
}

// GetRecent returns the latest transactions, newest first
func (r *BankrollTransactionRepository) GetRecent(ctx context.Context, bankrollID string, limit int) ([]*models.BankrollTransaction, error) {
	query := `
		SELECT id, bankroll_id, type, amount::text, timestamp, notes
		FROM bankroll_transactions
		WHERE bankroll_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, bankrollID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent transactions for bankroll %s: %w", bankrollID, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetSince returns transactions with timestamp >= since, newest first
func (r *BankrollTransactionRepository) GetSince(ctx context.Context, bankrollID string, since time.Time) ([]*models.BankrollTransaction, error) {
	query := `
		SELECT id, bankroll_id, type, amount::text, timestamp, notes
		FROM bankroll_transactions
		WHERE bankroll_id = $1 AND timestamp >= $2
		ORDER BY timestamp DESC
	`

	rows, err := r.q.Query(ctx, query, bankrollID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions since %s for bankroll %s: %w", since, bankrollID, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetAllAscending returns the full log in timestamp order for replay
func (r *BankrollTransactionRepository) GetAllAscending(ctx context.Context, bankrollID string) ([]*models.BankrollTransaction, error) {
	query := `
		SELECT id, bankroll_id, type, amount::text, timestamp, notes
		FROM bankroll_transactions
		WHERE bankroll_id = $1
		ORDER BY timestamp ASC
	`

	rows, err := r.q.Query(ctx, query, bankrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction log for bankroll %s: %w", bankrollID, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]*models.BankrollTransaction, error) {
	var transactions []*models.BankrollTransaction
	for rows.Next() {
		var transaction models.BankrollTransaction
		var amount string

		err := rows.Scan(
			&transaction.ID,
			&transaction.BankrollID,
			&transaction.Type,
			&amount,
			&transaction.Timestamp,
			&transaction.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		transaction.Amount, err = parseDecimal(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transaction amount: %w", err)
		}

		transactions = append(transactions, &transaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}
