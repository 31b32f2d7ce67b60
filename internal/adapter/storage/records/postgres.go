package recordstorage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/burenotti/go_health_risk/internal/adapter/storage"
	"github.com/burenotti/go_health_risk/internal/adapter/storage/pgutil"
	"github.com/burenotti/go_health_risk/internal/domain"
	"github.com/burenotti/go_health_risk/internal/domain/observation"
	"github.com/burenotti/go_health_risk/internal/domain/record"
	"github.com/burenotti/go_health_risk/internal/domain/risk"
	"github.com/leporo/sqlf"
)

const (
	tableRecords      = "assessment_records"
	constraintPrimary = "assessment_records_pkey"
)

type PostgresStorage struct {
	base *pgutil.BasePostgresStorage
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

func (s *PostgresStorage) Add(ctx context.Context, r *record.Record) error {
	obs, err := json.Marshal(r.Observation)
	if err != nil {
		return storage.InternalError(err)
	}
	factors, err := json.Marshal(r.Assessment.Factors)
	if err != nil {
		return storage.InternalError(err)
	}
	contributions, err := json.Marshal(r.Assessment.Contributions)
	if err != nil {
		return storage.InternalError(err)
	}

	q := sqlf.PostgreSQL.InsertInto(tableRecords).
		Set("record_id", r.RecordID).
		Set("subject_id", r.SubjectID).
		Set("observation", obs).
		Set("score", r.Assessment.Score).
		Set("risk_level", string(r.Assessment.Level)).
		Set("bmi", r.Assessment.Metrics.BMI).
		Set("bmi_category", string(r.Assessment.Metrics.BMICategory)).
		Set("bp_category", string(r.Assessment.Metrics.BPCategory)).
		Set("risk_factors", factors).
		Set("contributions", contributions).
		Set("created_at", r.CreatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, constraintPrimary) {
			return record.ErrRecordExists
		}
		return storage.InternalError(err)
	}

	s.base.MarkSeen(r)
	return nil
}

type recordRow struct {
	RecordID      string
	SubjectID     string
	Observation   []byte
	Score         int
	Level         string
	BMI           float64
	BMICategory   string
	BPCategory    string
	Factors       []byte
	Contributions []byte
	CreatedAt     time.Time
}

func (row *recordRow) toRecord() (*record.Record, error) {
	r := &record.Record{
		RecordID:  row.RecordID,
		SubjectID: row.SubjectID,
		Assessment: risk.Assessment{
			Score: row.Score,
			Level: risk.Level(row.Level),
			Metrics: risk.Metrics{
				BMI:         row.BMI,
				BMICategory: risk.BMICategory(row.BMICategory),
				BPCategory:  risk.BPCategory(row.BPCategory),
			},
		},
		CreatedAt: row.CreatedAt,
	}

	var obs observation.HealthObservation
	if err := json.Unmarshal(row.Observation, &obs); err != nil {
		return nil, fmt.Errorf("record %s: decode observation: %w", row.RecordID, err)
	}
	r.Observation = obs
	if err := json.Unmarshal(row.Factors, &r.Assessment.Factors); err != nil {
		return nil, fmt.Errorf("record %s: decode risk factors: %w", row.RecordID, err)
	}
	if err := json.Unmarshal(row.Contributions, &r.Assessment.Contributions); err != nil {
		return nil, fmt.Errorf("record %s: decode contributions: %w", row.RecordID, err)
	}
	return r, nil
}

func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt),
) ([]*record.Record, error) {
	var tmp recordRow

	q := sqlf.PostgreSQL.From(tableRecords+" r").
		Select("r.record_id").To(&tmp.RecordID).
		Select("r.subject_id").To(&tmp.SubjectID).
		Select("r.observation").To(&tmp.Observation).
		Select("r.score").To(&tmp.Score).
		Select("r.risk_level").To(&tmp.Level).
		Select("r.bmi").To(&tmp.BMI).
		Select("r.bmi_category").To(&tmp.BMICategory).
		Select("r.bp_category").To(&tmp.BPCategory).
		Select("r.risk_factors").To(&tmp.Factors).
		Select("r.contributions").To(&tmp.Contributions).
		Select("r.created_at").To(&tmp.CreatedAt)

	modify(q)

	var (
		result    []*record.Record
		decodeErr error
	)
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		r, err := tmp.toRecord()
		if err != nil {
			decodeErr = errors.Join(decodeErr, err)
			return
		}
		result = append(result, r)
	})

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storage.InternalError(err)
	}
	if decodeErr != nil {
		return nil, storage.InternalError(decodeErr)
	}
	return result, nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, subjectID, recordID string) (*record.Record, error) {
	result, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("r.record_id = ?", recordID).Where("r.subject_id = ?", subjectID)
	})
	return pgutil.FirstOrErr(result, err, record.ErrRecordNotFound)
}

func (s *PostgresStorage) ListBySubject(ctx context.Context, subjectID string, limit int) ([]*record.Record, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("r.subject_id = ?", subjectID).OrderBy("r.created_at DESC")
		if limit > 0 {
			stmt.Limit(limit)
		}
	})
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	s.base.Close()
	return nil
}
