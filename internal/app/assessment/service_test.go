package assessment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/burenotti/go_health_risk/internal/adapter/storage"
	"github.com/burenotti/go_health_risk/internal/app/messagebus"
	"github.com/burenotti/go_health_risk/internal/app/unitofwork"
	"github.com/burenotti/go_health_risk/internal/domain"
	"github.com/burenotti/go_health_risk/internal/domain/observation"
	"github.com/burenotti/go_health_risk/internal/domain/record"
	"github.com/burenotti/go_health_risk/internal/domain/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNarrator struct {
	text string
	err  error
	got  NarrativeRequest
}

func (f *fakeNarrator) Recommend(_ context.Context, req NarrativeRequest) (string, error) {
	f.got = req
	return f.text, f.err
}

type countingObserver struct {
	mu       sync.Mutex
	levels   []risk.Level
	failures int
}

func (o *countingObserver) AssessmentCompleted(level risk.Level) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.levels = append(o.levels, level)
}

func (o *countingObserver) NarrativeFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures++
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smokerInput() observation.Input {
	return observation.Input{
		Age:                 30,
		WeightKg:            70,
		HeightCm:            170,
		SystolicBp:          120,
		DiastolicBp:         80,
		RestingHeartRate:    70,
		SmokingStatus:       "Current smoker",
		ExerciseDaysPerWeek: 1,
		Cholesterol:         "Normal",
		Symptoms:            []string{"None"},
		ChronicConditions:   []string{"None"},
	}
}

func defaultAssessor() *risk.Assessor {
	return risk.NewAssessor(risk.DefaultScorer(), risk.DefaultFactorEnumerator())
}

func TestAssessWithoutNarrative(t *testing.T) {
	n := &fakeNarrator{text: "unused"}
	obs := &countingObserver{}
	s := New(discardLogger(), defaultAssessor(), n, obs)

	res, err := s.Assess(context.Background(), smokerInput(), "", false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Assessment.Score)
	assert.Equal(t, risk.LevelLow, res.Assessment.Level)
	assert.Empty(t, res.Narrative)
	assert.NoError(t, res.NarrativeErr)
	assert.Equal(t, []risk.Level{risk.LevelLow}, obs.levels)
}

func TestAssessWithNarrative(t *testing.T) {
	n := &fakeNarrator{text: "## Health Overview"}
	s := New(discardLogger(), defaultAssessor(), n, nil)

	res, err := s.Assess(context.Background(), smokerInput(), "HbA1c 5.6%", true)
	require.NoError(t, err)
	assert.Equal(t, "## Health Overview", res.Narrative)
	assert.NoError(t, res.NarrativeErr)
	assert.Equal(t, "HbA1c 5.6%", n.got.DocumentText)
	assert.Equal(t, res.Assessment, n.got.Assessment)
	assert.Equal(t, "Current smoker", n.got.Profile.SmokingStatus)
}

func TestAssessNarrativeFailureKeepsAssessment(t *testing.T) {
	n := &fakeNarrator{err: errors.New("upstream 503")}
	obs := &countingObserver{}
	s := New(discardLogger(), defaultAssessor(), n, obs)

	plain, err := s.Assess(context.Background(), smokerInput(), "", false)
	require.NoError(t, err)

	res, err := s.Assess(context.Background(), smokerInput(), "", true)
	require.NoError(t, err)
	assert.Equal(t, plain.Assessment, res.Assessment)
	assert.Equal(t, "[Narrative Error] upstream 503", res.Narrative)
	assert.ErrorIs(t, res.NarrativeErr, ErrExternalService)
	assert.Equal(t, 1, obs.failures)
}

func TestAssessNarratorNotConfigured(t *testing.T) {
	s := New(discardLogger(), defaultAssessor(), nil, nil)

	res, err := s.Assess(context.Background(), smokerInput(), "", true)
	require.NoError(t, err)
	assert.Equal(t, MarkerNotConfigured, res.Narrative)
	assert.ErrorIs(t, res.NarrativeErr, ErrExternalService)
	assert.Equal(t, 2, res.Assessment.Score)
}

func TestAssessErrorsAreNotResults(t *testing.T) {
	s := New(discardLogger(), defaultAssessor(), &fakeNarrator{}, nil)

	in := smokerInput()
	in.HeightCm = 0
	res, err := s.Assess(context.Background(), in, "", true)
	assert.ErrorIs(t, err, risk.ErrInvalidMeasurement)
	assert.Nil(t, res)

	in = smokerInput()
	in.ChronicConditions = []string{"gout"}
	res, err = s.Assess(context.Background(), in, "", true)
	assert.ErrorIs(t, err, observation.ErrUnknownCategoryValue)
	assert.Nil(t, res)
}

func newUoW(t *testing.T) (sqlmock.Sqlmock, *unitofwork.UnitOfWork[*AtomicContext], *messagebus.MessageBus) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bus := messagebus.New(discardLogger())
	uow := unitofwork.New[*AtomicContext](&storage.DB{DB: db}, NewAtomicContext, bus, discardLogger())
	return mock, uow, bus
}

func TestRecord(t *testing.T) {
	mock, uow, bus := newUoW(t)

	var published []string
	var mu sync.Mutex
	bus.Register(record.EventCreated, func(e domain.Event) error {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, e.(record.CreatedEvent).SubjectID)
		return nil
	})

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO assessment_records`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := New(discardLogger(), defaultAssessor(), nil, nil)
	r, err := s.Record(context.Background(), uow, "subject-1", smokerInput())
	require.NoError(t, err)
	bus.Close()

	assert.NotEmpty(t, r.RecordID)
	assert.Equal(t, "subject-1", r.SubjectID)
	assert.Equal(t, risk.LevelLow, r.Assessment.Level)
	assert.Equal(t, []string{"subject-1"}, published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRollsBackOnStorageError(t *testing.T) {
	mock, uow, _ := newUoW(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO assessment_records`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	s := New(discardLogger(), defaultAssessor(), nil, nil)
	_, err := s.Record(context.Background(), uow, "subject-1", smokerInput())
	assert.ErrorIs(t, err, unitofwork.ErrRollback)
	assert.ErrorIs(t, err, storage.ErrInternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordInvalidInputNeverTouchesStorage(t *testing.T) {
	mock, uow, _ := newUoW(t)

	in := smokerInput()
	in.WeightKg = -3
	s := New(discardLogger(), defaultAssessor(), nil, nil)
	_, err := s.Record(context.Background(), uow, "subject-1", in)
	assert.ErrorIs(t, err, risk.ErrInvalidMeasurement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecordNotFound(t *testing.T) {
	mock, uow, _ := newUoW(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM assessment_records`).
		WithArgs("rec-1", "subject-1").
		WillReturnRows(sqlmock.NewRows([]string{"record_id"}))
	mock.ExpectRollback()

	s := New(discardLogger(), defaultAssessor(), nil, nil)
	_, err := s.GetRecord(context.Background(), uow, "subject-1", "rec-1")
	assert.ErrorIs(t, err, record.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
