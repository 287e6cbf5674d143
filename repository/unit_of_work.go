package repository

import (
	"context"
	"fmt"

	"stacktrack/database"
	"stacktrack/events"
	"stacktrack/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	bankrollRepo     service.BankrollRepository
	transactionRepo  service.BankrollTransactionRepository
	sessionRepo      service.SessionRepository
	rebuyRepo        service.SessionRebuyRepository
	noteRepo         service.SessionNoteRepository
	referenceRepo    service.ReferenceRepository
	analyticsRepo    service.AnalyticsRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.bankrollRepo = newBankrollRepositoryWithTx(tx)
	u.transactionRepo = newBankrollTransactionRepositoryWithTx(tx)
	u.sessionRepo = newSessionRepositoryWithTx(tx)
	u.rebuyRepo = newSessionRebuyRepositoryWithTx(tx)
	u.noteRepo = newSessionNoteRepositoryWithTx(tx)
	u.referenceRepo = newReferenceRepositoryWithTx(tx)
	u.analyticsRepo = newAnalyticsRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// BankrollRepository returns the bankroll repository for this unit of work
func (u *unitOfWork) BankrollRepository() service.BankrollRepository {
	if u.bankrollRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.bankrollRepo
}

// BankrollTransactionRepository returns the transaction log repository for this unit of work
func (u *unitOfWork) BankrollTransactionRepository() service.BankrollTransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

// SessionRepository returns the session repository for this unit of work
func (u *unitOfWork) SessionRepository() service.SessionRepository {
	if u.sessionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.sessionRepo
}

// SessionRebuyRepository returns the rebuy repository for this unit of work
func (u *unitOfWork) SessionRebuyRepository() service.SessionRebuyRepository {
	if u.rebuyRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rebuyRepo
}

// SessionNoteRepository returns the session note repository for this unit of work
func (u *unitOfWork) SessionNoteRepository() service.SessionNoteRepository {
	if u.noteRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.noteRepo
}

// ReferenceRepository returns the reference data repository for this unit of work
func (u *unitOfWork) ReferenceRepository() service.ReferenceRepository {
	if u.referenceRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.referenceRepo
}

// AnalyticsRepository returns the analytics repository for this unit of work
func (u *unitOfWork) AnalyticsRepository() service.AnalyticsRepository {
	if u.analyticsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.analyticsRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
