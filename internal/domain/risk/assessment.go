package risk

import (
	"github.com/burenotti/go_health_risk/internal/domain/observation"
)

type Assessment struct {
	Score         int            `json:"score"`
	Level         Level          `json:"risk_level"`
	Factors       []string       `json:"risk_factors"`
	Metrics       Metrics        `json:"metrics"`
	Contributions []Contribution `json:"contributions"`
}

// Assessor composes the metric calculator with a scorer and a factor
// enumerator. Both see the same observation and metrics snapshot.
type Assessor struct {
	Scorer  Scorer
	Factors *FactorEnumerator
}

func NewAssessor(scorer Scorer, factors *FactorEnumerator) *Assessor {
	return &Assessor{Scorer: scorer, Factors: factors}
}

var defaultAssessor = NewAssessor(DefaultScorer(), DefaultFactorEnumerator())

// Assess runs the default rule tables.
func Assess(o observation.HealthObservation) (Assessment, error) {
	return defaultAssessor.Assess(o)
}

// AssessInput runs the default rule tables on a boundary observation.
func AssessInput(in observation.Input) (observation.HealthObservation, Assessment, error) {
	return defaultAssessor.AssessInput(in)
}

func (a *Assessor) Assess(o observation.HealthObservation) (Assessment, error) {
	m, err := ComputeMetrics(o)
	if err != nil {
		return Assessment{}, err
	}
	if err := validateRanges(o); err != nil {
		return Assessment{}, err
	}

	score, level, contributions, err := a.Scorer.Score(o, m)
	if err != nil {
		return Assessment{}, err
	}

	return Assessment{
		Score:         score,
		Level:         level,
		Factors:       a.Factors.Enumerate(o, m),
		Metrics:       m,
		Contributions: contributions,
	}, nil
}

// AssessInput builds the observation from its boundary form and assesses it.
// Height and weight are checked before any category is parsed, so a missing
// height is reported as an invalid measurement whatever else is wrong.
func (a *Assessor) AssessInput(in observation.Input) (observation.HealthObservation, Assessment, error) {
	if _, err := ComputeMetrics(observation.HealthObservation{WeightKg: in.WeightKg, HeightCm: in.HeightCm}); err != nil {
		return observation.HealthObservation{}, Assessment{}, err
	}
	o, err := in.Build()
	if err != nil {
		return observation.HealthObservation{}, Assessment{}, err
	}
	res, err := a.Assess(o)
	if err != nil {
		return observation.HealthObservation{}, Assessment{}, err
	}
	return o, res, nil
}

func validateRanges(o observation.HealthObservation) error {
	switch {
	case o.Age < 0:
		return invalidMeasurement("age must not be negative, got %d", o.Age)
	case o.SystolicBp < 0 || o.DiastolicBp < 0:
		return invalidMeasurement("blood pressure must not be negative, got %d/%d", o.SystolicBp, o.DiastolicBp)
	case o.RestingHeartRate < 0:
		return invalidMeasurement("resting heart rate must not be negative, got %d", o.RestingHeartRate)
	case o.ExerciseDaysPerWeek < 0 || o.ExerciseDaysPerWeek > 7:
		return invalidMeasurement("exercise days per week must be within 0..7, got %d", o.ExerciseDaysPerWeek)
	}
	return nil
}
