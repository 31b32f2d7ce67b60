package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/burenotti/go_health_risk/internal/app/unitofwork"
	"github.com/burenotti/go_health_risk/internal/domain/observation"
	"github.com/burenotti/go_health_risk/internal/domain/record"
	"github.com/burenotti/go_health_risk/internal/domain/risk"
	"github.com/google/uuid"
)

var (
	ErrExternalService = errors.New("external service error")
)

// MarkerNotConfigured replaces the narrative when no generator is wired.
const MarkerNotConfigured = "[Error: narrative generator not configured]"

// NarrativeRequest is everything the narrative generator gets to see.
type NarrativeRequest struct {
	Profile      observation.Input
	Observation  observation.HealthObservation
	Assessment   risk.Assessment
	DocumentText string
}

type Narrator interface {
	Recommend(ctx context.Context, req NarrativeRequest) (string, error)
}

type Observer interface {
	AssessmentCompleted(level risk.Level)
	NarrativeFailed()
}

type Result struct {
	Observation observation.HealthObservation
	Assessment  risk.Assessment
	// Narrative holds either generated prose or a visible error marker.
	Narrative    string
	NarrativeErr error
}

type Service struct {
	logger   *slog.Logger
	assessor *risk.Assessor
	narrator Narrator
	observer Observer
}

// New builds the service. narrator and observer may be nil.
func New(logger *slog.Logger, assessor *risk.Assessor, narrator Narrator, observer Observer) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Service{
		logger:   logger,
		assessor: assessor,
		narrator: narrator,
		observer: observer,
	}
}

func (s *Service) evaluate(in observation.Input) (observation.HealthObservation, risk.Assessment, error) {
	obs, a, err := s.assessor.AssessInput(in)
	if err != nil {
		return observation.HealthObservation{}, risk.Assessment{}, err
	}
	s.observer.AssessmentCompleted(a.Level)
	return obs, a, nil
}

// Assess scores the input and, when asked, attaches a narrative. A failing
// narrative generator never fails the call: the assessment is returned with
// an error marker in place of the narrative.
func (s *Service) Assess(
	ctx context.Context,
	in observation.Input,
	documentText string,
	withNarrative bool,
) (*Result, error) {
	obs, a, err := s.evaluate(in)
	if err != nil {
		return nil, err
	}

	res := &Result{Observation: obs, Assessment: a}
	if !withNarrative {
		return res, nil
	}

	res.Narrative, res.NarrativeErr = s.narrate(ctx, NarrativeRequest{
		Profile:      in,
		Observation:  obs,
		Assessment:   a,
		DocumentText: documentText,
	})
	return res, nil
}

func (s *Service) narrate(ctx context.Context, req NarrativeRequest) (string, error) {
	if s.narrator == nil {
		return MarkerNotConfigured, fmt.Errorf("%w: narrative generator not configured", ErrExternalService)
	}

	text, err := s.narrator.Recommend(ctx, req)
	if err != nil {
		s.observer.NarrativeFailed()
		s.logger.Warn("narrative generation failed", "error", err, "risk_level", req.Assessment.Level)
		return ErrorMarker(err), errors.Join(fmt.Errorf("narrative: %w", err), ErrExternalService)
	}
	return text, nil
}

// ErrorMarker renders a collaborator failure as visible text.
func ErrorMarker(err error) string {
	return fmt.Sprintf("[Narrative Error] %v", err)
}

func (s *Service) Record(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	subjectID string,
	in observation.Input,
) (r *record.Record, err error) {
	obs, a, err := s.evaluate(in)
	if err != nil {
		return nil, err
	}

	err = uow.Atomic(ctx, func(ctx context.Context, tx *AtomicContext) error {
		r = record.New(uuid.NewString(), subjectID, obs, a)
		if err := tx.RecordStorage.Add(ctx, r); err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("assessment recorded", "record_id", r.RecordID, "risk_level", a.Level)
	return r, nil
}

func (s *Service) GetRecord(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	subjectID string,
	recordID string,
) (r *record.Record, err error) {
	err = uow.Atomic(ctx, func(ctx context.Context, tx *AtomicContext) error {
		var err error
		if r, err = tx.RecordStorage.GetByID(ctx, subjectID, recordID); err != nil {
			return err
		}

		return tx.Commit()
	})
	return
}

func (s *Service) ListRecords(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	subjectID string,
	limit int,
) (list []*record.Record, err error) {
	err = uow.Atomic(ctx, func(ctx context.Context, tx *AtomicContext) error {
		var err error
		if list, err = tx.RecordStorage.ListBySubject(ctx, subjectID, limit); err != nil {
			return err
		}

		return tx.Commit()
	})
	return
}

type noopObserver struct{}

func (noopObserver) AssessmentCompleted(risk.Level) {}
func (noopObserver) NarrativeFailed()               {}
