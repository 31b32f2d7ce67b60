package assessment

import (
	"context"
	"errors"
	"fmt"

	"github.com/burenotti/go_health_risk/internal/adapter/storage"
	recordstorage "github.com/burenotti/go_health_risk/internal/adapter/storage/records"
	"github.com/burenotti/go_health_risk/internal/domain"
	"github.com/burenotti/go_health_risk/internal/domain/record"
)

type RecordStorage interface {
	Add(ctx context.Context, r *record.Record) error
	GetByID(ctx context.Context, subjectID, recordID string) (*record.Record, error)
	ListBySubject(ctx context.Context, subjectID string, limit int) ([]*record.Record, error)
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	db            storage.DBContext
	RecordStorage RecordStorage
}

func (a *AtomicContext) Commit() error {
	return a.db.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.RecordStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}

	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.RecordStorage.CollectEvents()
}

func NewAtomicContext(dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		db:            dbContext,
		RecordStorage: recordstorage.NewPostgresStorage(dbContext),
	}, nil
}
