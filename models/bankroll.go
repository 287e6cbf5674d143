package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a bankroll ledger entry. Amounts are stored
// unsigned; the sign is inferred from the type.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeWinnings   TransactionType = "winnings"
	TransactionTypeLoss       TransactionType = "loss"
)

// IsCredit reports whether the type adds to the balance
func (t TransactionType) IsCredit() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWinnings
}

// Bankroll is a user's tracked pool of money across all sessions.
// Exactly one exists per user once initialized.
type Bankroll struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"userId"`
	CurrentAmount decimal.Decimal `db:"current_amount" json:"currentAmount"`
	LastUpdated   time.Time       `db:"last_updated" json:"lastUpdated"`
}

// BankrollTransaction is an immutable ledger entry belonging to a bankroll
type BankrollTransaction struct {
	ID         string          `db:"id" json:"id"`
	BankrollID string          `db:"bankroll_id" json:"bankrollId"`
	Type       TransactionType `db:"type" json:"type"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Timestamp  time.Time       `db:"timestamp" json:"timestamp"`
	Notes      *string         `db:"notes" json:"notes,omitempty"`
}

// SignedAmount returns the amount with the sign implied by the type
func (t *BankrollTransaction) SignedAmount() decimal.Decimal {
	if t.Type.IsCredit() {
		return t.Amount
	}
	return t.Amount.Neg()
}

// BankrollSummary pairs a bankroll with its most recent transactions
type BankrollSummary struct {
	Bankroll     *Bankroll              `json:"bankroll"`
	Transactions []*BankrollTransaction `json:"transactions"`
}

// BankrollReconciliation compares the stored running balance (authoritative)
// against a replay of the transaction log (audit)
type BankrollReconciliation struct {
	StoredBalance    decimal.Decimal `json:"storedBalance"`
	ReplayedBalance  decimal.Decimal `json:"replayedBalance"`
	Drift            decimal.Decimal `json:"drift"`
	TransactionCount int             `json:"transactionCount"`
}

// InBalance reports whether the two derivations agree
func (r *BankrollReconciliation) InBalance() bool {
	return r.Drift.IsZero()
}
