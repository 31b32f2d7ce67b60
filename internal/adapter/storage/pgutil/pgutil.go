package pgutil

import (
	"errors"
	"sync"

	"github.com/burenotti/go_health_risk/internal/adapter/storage"
	"github.com/burenotti/go_health_risk/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tracked is an aggregate whose pending events are collected when the unit
// of work finishes.
type Tracked interface {
	ID() string
	PopEvents() []domain.Event
}

type BasePostgresStorage struct {
	DB     storage.DBContext
	seenMu sync.Mutex
	seen   map[string]Tracked
}

func NewBasePostgresStorage(db storage.DBContext) *BasePostgresStorage {
	return &BasePostgresStorage{
		DB:   db,
		seen: make(map[string]Tracked),
	}
}

func (s *BasePostgresStorage) CollectEvents() []domain.Event {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()

	var events []domain.Event
	for _, a := range s.seen {
		events = append(events, a.PopEvents()...)
	}
	s.seen = make(map[string]Tracked)
	return events
}

func (s *BasePostgresStorage) Close() {
	s.seenMu.Lock()
	s.seen = make(map[string]Tracked)
	s.seenMu.Unlock()
}

func (s *BasePostgresStorage) MarkSeen(a Tracked) {
	s.seenMu.Lock()
	s.seen[a.ID()] = a
	s.seenMu.Unlock()
}

func ViolatesConstraint(err error, constraintName string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) &&
		pgErr.ConstraintName == constraintName
}

// FirstOrErr returns the first item, notFoundErr when there are none, or err
// when the query itself failed.
func FirstOrErr[V any](items []V, err, notFoundErr error) (V, error) {
	if err != nil {
		return *new(V), err
	}

	if len(items) == 0 {
		return *new(V), notFoundErr
	}

	return items[0], nil
}
