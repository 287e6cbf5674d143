package testutil

import (
	"context"
	"testing"
	"time"

	"stacktrack/database"
	"stacktrack/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// InsertTestUser provisions an identity row the way the auth layer would.
// The application itself never writes to users, so tests do it directly.
func InsertTestUser(t *testing.T, db *database.DB, username string) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.Exec(context.Background(),
		`INSERT INTO users (id, username, email) VALUES ($1, $2, $3)`,
		id, username, username+"@example.com")
	require.NoError(t, err)

	return id
}

// CreateTestBankroll builds a bankroll with a default starting balance
func CreateTestBankroll(userID string) *models.Bankroll {
	return &models.Bankroll{
		ID:            uuid.New().String(),
		UserID:        userID,
		CurrentAmount: decimal.NewFromInt(1000),
	}
}

// CreateTestBankrollWithAmount builds a bankroll with a specific balance
func CreateTestBankrollWithAmount(userID string, amount decimal.Decimal) *models.Bankroll {
	bankroll := CreateTestBankroll(userID)
	bankroll.CurrentAmount = amount
	return bankroll
}

// CreateTestTransaction builds a ledger entry against a bankroll
func CreateTestTransaction(bankrollID string, kind models.TransactionType, amount decimal.Decimal) *models.BankrollTransaction {
	return &models.BankrollTransaction{
		ID:         uuid.New().String(),
		BankrollID: bankrollID,
		Type:       kind,
		Amount:     amount,
	}
}

// CreateTestSession builds an active session with default stakes and buy-in
func CreateTestSession(userID string) *models.Session {
	return &models.Session{
		ID:     uuid.New().String(),
		UserID: userID,
		Stakes: "$1/$2",
		BuyIn:  decimal.NewFromInt(200),
		Status: models.SessionStatusActive,
	}
}

// CreateTestSessionWithBuyIn builds an active session with a specific buy-in
func CreateTestSessionWithBuyIn(userID string, buyIn decimal.Decimal) *models.Session {
	session := CreateTestSession(userID)
	session.BuyIn = buyIn
	return session
}

// InsertCompletedSession writes a completed session row directly, bypassing
// the one-active-per-user index that Create would trip over in bulk setups
func InsertCompletedSession(t *testing.T, db *database.DB, userID string, buyIn, cashOut decimal.Decimal, start, end time.Time) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.Exec(context.Background(),
		`INSERT INTO sessions (id, user_id, stakes, start_time, end_time, buy_in, cash_out, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 'completed')`,
		id, userID, "$1/$2", start, end, buyIn.String(), cashOut.String())
	require.NoError(t, err)

	return id
}

// CreateTestRebuy builds a rebuy against a session
func CreateTestRebuy(sessionID string, amount decimal.Decimal) *models.SessionRebuy {
	return &models.SessionRebuy{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Amount:    amount,
	}
}

// CreateTestNote builds a threaded note against a session
func CreateTestNote(sessionID, content string) *models.SessionNote {
	return &models.SessionNote{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Content:   content,
	}
}
