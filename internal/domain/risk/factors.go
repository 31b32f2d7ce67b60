package risk

import (
	"github.com/burenotti/go_health_risk/internal/domain/observation"
	"github.com/samber/lo"
)

const (
	FactorObesity             = "Obesity"
	FactorUnderweight         = "Underweight"
	FactorHighBloodPressure   = "High blood pressure"
	FactorSmoking             = "Smoking"
	FactorLowPhysicalActivity = "Low physical activity"
)

// FactorRule appends Label to a factor list when Applies holds.
type FactorRule struct {
	Label   string
	Applies func(o observation.HealthObservation, m Metrics) bool
}

var DefaultFactorRules = []FactorRule{
	{Label: FactorObesity, Applies: func(_ observation.HealthObservation, m Metrics) bool {
		return m.BMI > 30
	}},
	{Label: FactorUnderweight, Applies: func(_ observation.HealthObservation, m Metrics) bool {
		return m.BMI < 18.5
	}},
	{Label: FactorHighBloodPressure, Applies: func(_ observation.HealthObservation, m Metrics) bool {
		return m.BPCategory.IsHypertension()
	}},
	{Label: FactorSmoking, Applies: func(o observation.HealthObservation, _ Metrics) bool {
		return o.SmokingStatus == observation.SmokingCurrent
	}},
	{Label: FactorLowPhysicalActivity, Applies: func(o observation.HealthObservation, _ Metrics) bool {
		return o.ExerciseDaysPerWeek < 3
	}},
}

type FactorEnumerator struct {
	Rules []FactorRule
}

func DefaultFactorEnumerator() *FactorEnumerator {
	return &FactorEnumerator{Rules: DefaultFactorRules}
}

// Enumerate lists structural factors first, then declared chronic conditions,
// then declared symptoms. Labels are unique and keep first-seen order.
func (e *FactorEnumerator) Enumerate(o observation.HealthObservation, m Metrics) []string {
	labels := make([]string, 0, len(e.Rules)+len(o.ChronicConditions)+len(o.Symptoms))
	for _, r := range e.Rules {
		if r.Applies(o, m) {
			labels = append(labels, r.Label)
		}
	}
	for _, c := range o.ChronicConditions {
		labels = append(labels, c.Label())
	}
	for _, s := range o.Symptoms {
		labels = append(labels, s.Label())
	}
	return lo.Uniq(labels)
}
