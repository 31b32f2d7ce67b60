package risk

import (
	"errors"
	"fmt"

	"github.com/burenotti/go_health_risk/internal/domain/observation"
	"github.com/samber/lo"
)

var (
	ErrInvalidBands = errors.New("invalid band table")
)

type Level string

const (
	LevelVeryLow  Level = "very_low"
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
	LevelVeryHigh Level = "very_high"
)

// Levels lists every level from the least to the most severe.
var Levels = []Level{LevelVeryLow, LevelLow, LevelModerate, LevelHigh, LevelVeryHigh}

// Predicate is one named yes/no rule worth a single point.
type Predicate struct {
	Name string
	Test func(o observation.HealthObservation, m Metrics) bool
}

// Contribution records what a single predicate added to a score.
type Contribution struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

var acuteSymptoms = []observation.Symptom{
	observation.SymptomFever,
	observation.SymptomCough,
	observation.SymptomFatigue,
	observation.SymptomDifficultyBreathing,
}

// DefaultPredicates are evaluated in order. Each is worth at most one point,
// so the symptom group counts once however many symptoms are present.
var DefaultPredicates = []Predicate{
	{Name: "bmi_out_of_range", Test: func(_ observation.HealthObservation, m Metrics) bool {
		return m.BMI < 18.5 || m.BMI > 30
	}},
	{Name: "high_blood_pressure", Test: func(o observation.HealthObservation, _ Metrics) bool {
		return o.SystolicBp > 140 || o.DiastolicBp > 90
	}},
	{Name: "high_resting_heart_rate", Test: func(o observation.HealthObservation, _ Metrics) bool {
		return o.RestingHeartRate > 100
	}},
	{Name: "current_smoker", Test: func(o observation.HealthObservation, _ Metrics) bool {
		return o.SmokingStatus == observation.SmokingCurrent
	}},
	{Name: "low_physical_activity", Test: func(o observation.HealthObservation, _ Metrics) bool {
		return o.ExerciseDaysPerWeek < 3
	}},
	{Name: "diabetes", Test: func(o observation.HealthObservation, _ Metrics) bool {
		return o.HasCondition(observation.ConditionDiabetes)
	}},
	{Name: "hypertension", Test: func(o observation.HealthObservation, _ Metrics) bool {
		return o.HasCondition(observation.ConditionHypertension)
	}},
	{Name: "heart_disease", Test: func(o observation.HealthObservation, _ Metrics) bool {
		return o.HasCondition(observation.ConditionHeartDisease)
	}},
	{Name: "acute_symptoms", Test: func(o observation.HealthObservation, _ Metrics) bool {
		return lo.Some(o.Symptoms, acuteSymptoms)
	}},
}

// Band maps the inclusive score range [Min, Max] to a level.
type Band struct {
	Min   int
	Max   int
	Level Level
}

type BandTable []Band

var DefaultBands = BandTable{
	{Min: 0, Max: 0, Level: LevelVeryLow},
	{Min: 1, Max: 2, Level: LevelLow},
	{Min: 3, Max: 4, Level: LevelModerate},
	{Min: 5, Max: 6, Level: LevelHigh},
	{Min: 7, Max: 9, Level: LevelVeryHigh},
}

// Validate checks that the bands are ordered, contiguous and cover exactly
// [0, maxScore].
func (t BandTable) Validate(maxScore int) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidBands)
	}
	next := 0
	for i, b := range t {
		if b.Min != next {
			return fmt.Errorf("%w: band %d starts at %d, expected %d", ErrInvalidBands, i, b.Min, next)
		}
		if b.Max < b.Min {
			return fmt.Errorf("%w: band %d ends before it starts", ErrInvalidBands, i)
		}
		next = b.Max + 1
	}
	if next-1 != maxScore {
		return fmt.Errorf("%w: bands end at %d, expected %d", ErrInvalidBands, next-1, maxScore)
	}
	return nil
}

func (t BandTable) LevelFor(score int) (Level, bool) {
	for _, b := range t {
		if score >= b.Min && score <= b.Max {
			return b.Level, true
		}
	}
	return "", false
}

// Scorer turns an observation into a score and a level. The rule scorer is
// the only implementation today.
type Scorer interface {
	Score(o observation.HealthObservation, m Metrics) (int, Level, []Contribution, error)
}

type RuleScorer struct {
	Predicates []Predicate
	Bands      BandTable
}

func NewRuleScorer(predicates []Predicate, bands BandTable) (*RuleScorer, error) {
	if err := bands.Validate(len(predicates)); err != nil {
		return nil, err
	}
	return &RuleScorer{Predicates: predicates, Bands: bands}, nil
}

func DefaultScorer() *RuleScorer {
	s, err := NewRuleScorer(DefaultPredicates, DefaultBands)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *RuleScorer) Score(o observation.HealthObservation, m Metrics) (int, Level, []Contribution, error) {
	if err := o.ValidateCategories(); err != nil {
		return 0, "", nil, err
	}

	score := 0
	contributions := make([]Contribution, 0, len(s.Predicates))
	for _, p := range s.Predicates {
		points := 0
		if p.Test(o, m) {
			points = 1
		}
		score += points
		contributions = append(contributions, Contribution{Name: p.Name, Points: points})
	}

	level, ok := s.Bands.LevelFor(score)
	if !ok {
		return 0, "", nil, fmt.Errorf("%w: score %d is not covered", ErrInvalidBands, score)
	}
	return score, level, contributions, nil
}
