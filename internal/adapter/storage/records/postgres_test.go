package recordstorage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/burenotti/go_health_risk/internal/adapter/storage"
	"github.com/burenotti/go_health_risk/internal/domain/observation"
	"github.com/burenotti/go_health_risk/internal/domain/record"
	"github.com/burenotti/go_health_risk/internal/domain/risk"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordColumns = []string{
	"record_id", "subject_id", "observation", "score", "risk_level", "bmi",
	"bmi_category", "bp_category", "risk_factors", "contributions", "created_at",
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStorage) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return db, mock, NewPostgresStorage(&storage.DB{DB: db})
}

func sampleRecord(t *testing.T) *record.Record {
	t.Helper()
	obs := observation.HealthObservation{
		Age:                 30,
		WeightKg:            70,
		HeightCm:            170,
		SystolicBp:          120,
		DiastolicBp:         80,
		RestingHeartRate:    70,
		SmokingStatus:       observation.SmokingCurrent,
		ExerciseDaysPerWeek: 1,
		Cholesterol:         observation.CholesterolNormal,
	}
	a, err := risk.Assess(obs)
	require.NoError(t, err)
	return record.New("rec-1", "subject-1", obs, a)
}

func TestAdd_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	r := sampleRecord(t)

	mock.ExpectExec(`INSERT INTO assessment_records`).
		WithArgs(
			"rec-1", "subject-1", sqlmock.AnyArg(), 2, "low", 24.2, "normal", "stage1",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Add(context.Background(), r))

	events := repo.CollectEvents()
	require.Len(t, events, 1)
	assert.Equal(t, record.EventCreated, events[0].Type())
	assert.Empty(t, repo.CollectEvents())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_Duplicate(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO assessment_records`).
		WillReturnError(&pgconn.PgError{
			Code:           pgerrcode.UniqueViolation,
			ConstraintName: "assessment_records_pkey",
		})

	err := repo.Add(context.Background(), sampleRecord(t))
	assert.ErrorIs(t, err, record.ErrRecordExists)
	assert.Empty(t, repo.CollectEvents())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_InternalError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO assessment_records`).
		WillReturnError(errors.New("connection reset"))

	err := repo.Add(context.Background(), sampleRecord(t))
	assert.ErrorIs(t, err, storage.ErrInternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	created := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(recordColumns).AddRow(
		"rec-1", "subject-1",
		[]byte(`{"age":30,"weight_kg":70,"height_cm":170,"systolic_bp":120,"diastolic_bp":80,"resting_heart_rate":70,"smoking_status":"current","exercise_days_per_week":1,"cholesterol":"normal","symptoms":[],"chronic_conditions":[]}`),
		2, "low", 24.2, "normal", "stage1",
		[]byte(`["High blood pressure","Smoking","Low physical activity"]`),
		[]byte(`[{"name":"current_smoker","points":1},{"name":"low_physical_activity","points":1}]`),
		created,
	)

	mock.ExpectQuery(`SELECT .+ FROM assessment_records r\s+WHERE r\.record_id = \$1\s+AND r\.subject_id = \$2`).
		WithArgs("rec-1", "subject-1").
		WillReturnRows(rows)

	r, err := repo.GetByID(context.Background(), "subject-1", "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", r.RecordID)
	assert.Equal(t, observation.SmokingCurrent, r.Observation.SmokingStatus)
	assert.Equal(t, 2, r.Assessment.Score)
	assert.Equal(t, risk.LevelLow, r.Assessment.Level)
	assert.Equal(t, risk.BPStage1, r.Assessment.Metrics.BPCategory)
	assert.Equal(t, []string{"High blood pressure", "Smoking", "Low physical activity"}, r.Assessment.Factors)
	assert.Len(t, r.Assessment.Contributions, 2)
	assert.Equal(t, created, r.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM assessment_records r`).
		WithArgs("missing", "subject-1").
		WillReturnRows(sqlmock.NewRows(recordColumns))

	_, err := repo.GetByID(context.Background(), "subject-1", "missing")
	assert.ErrorIs(t, err, record.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_CorruptRow(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows(recordColumns).AddRow(
		"rec-1", "subject-1", []byte(`{not json`), 0, "very_low", 22.0, "normal", "normal",
		[]byte(`[]`), []byte(`[]`), time.Now(),
	)
	mock.ExpectQuery(`SELECT .* FROM assessment_records r`).WillReturnRows(rows)

	_, err := repo.GetByID(context.Background(), "subject-1", "rec-1")
	assert.ErrorIs(t, err, storage.ErrInternal)
}

func TestListBySubject(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	newer := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(recordColumns).
		AddRow("rec-2", "subject-1", []byte(`{}`), 0, "very_low", 22.0, "normal", "normal", []byte(`[]`), []byte(`[]`), newer).
		AddRow("rec-1", "subject-1", []byte(`{}`), 5, "high", 33.0, "obese", "stage2", []byte(`["Obesity"]`), []byte(`[]`), older)

	mock.ExpectQuery(`SELECT .+ FROM assessment_records r\s+WHERE r\.subject_id = \$1\s+ORDER BY r\.created_at DESC\s+LIMIT \$2`).
		WithArgs("subject-1", 10).
		WillReturnRows(rows)

	list, err := repo.ListBySubject(context.Background(), "subject-1", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "rec-2", list[0].RecordID)
	assert.Equal(t, "rec-1", list[1].RecordID)
	assert.Equal(t, []string{"Obesity"}, list[1].Assessment.Factors)

	assert.NoError(t, mock.ExpectationsWereMet())
}
