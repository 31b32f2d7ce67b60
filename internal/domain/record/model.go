package record

import (
	"errors"
	"time"

	"github.com/burenotti/go_health_risk/internal/domain"
	"github.com/burenotti/go_health_risk/internal/domain/observation"
	"github.com/burenotti/go_health_risk/internal/domain/risk"
)

var (
	ErrRecordExists   = errors.New("record already exists")
	ErrRecordNotFound = errors.New("record not found")
)

const (
	EventCreated = "record.created"
)

// Record is one assessment kept in a subject's history. It is written once
// and never updated.
type Record struct {
	domain.Aggregate
	RecordID    string
	SubjectID   string
	Observation observation.HealthObservation
	Assessment  risk.Assessment
	CreatedAt   time.Time
}

func New(
	recordID string,
	subjectID string,
	obs observation.HealthObservation,
	assessment risk.Assessment,
) *Record {
	r := &Record{
		RecordID:    recordID,
		SubjectID:   subjectID,
		Observation: obs,
		Assessment:  assessment,
		CreatedAt:   time.Now().UTC(),
	}
	r.PushEvent(CreatedEvent{
		At:        r.CreatedAt,
		RecordID:  r.RecordID,
		SubjectID: r.SubjectID,
		Level:     assessment.Level,
		Score:     assessment.Score,
	})
	return r
}

func (r *Record) ID() string {
	return r.RecordID
}

type CreatedEvent struct {
	At        time.Time
	RecordID  string
	SubjectID string
	Level     risk.Level
	Score     int
}

func (e CreatedEvent) Type() string {
	return EventCreated
}

func (e CreatedEvent) PublishedAt() time.Time {
	return e.At
}
