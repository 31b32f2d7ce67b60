package observation

import (
	"slices"
)

// Input is the loosely typed shape observations arrive in from forms, JSON
// payloads and files. Build is the only place category strings are parsed
// and the "none" sentinel is dropped.
type Input struct {
	Name                string   `json:"name,omitempty"`
	Gender              string   `json:"gender,omitempty"`
	Diet                string   `json:"diet,omitempty"`
	Age                 int      `json:"age"`
	WeightKg            float64  `json:"weight_kg"`
	HeightCm            float64  `json:"height_cm"`
	SystolicBp          int      `json:"systolic_bp"`
	DiastolicBp         int      `json:"diastolic_bp"`
	RestingHeartRate    int      `json:"resting_heart_rate"`
	SmokingStatus       string   `json:"smoking_status"`
	ExerciseDaysPerWeek int      `json:"exercise_days_per_week"`
	Cholesterol         string   `json:"cholesterol"`
	Symptoms            []string `json:"symptoms"`
	ChronicConditions   []string `json:"chronic_conditions"`
}

var smokingAliases = map[string]SmokingStatus{
	"never":          SmokingNever,
	"never smoked":   SmokingNever,
	"former":         SmokingFormer,
	"former smoker":  SmokingFormer,
	"current":        SmokingCurrent,
	"current smoker": SmokingCurrent,
}

var symptomAliases = map[string]Symptom{
	"fever":                SymptomFever,
	"cough":                SymptomCough,
	"fatigue":              SymptomFatigue,
	"difficulty-breathing": SymptomDifficultyBreathing,
	"difficulty breathing": SymptomDifficultyBreathing,
}

var conditionAliases = map[string]Condition{
	"diabetes":      ConditionDiabetes,
	"hypertension":  ConditionHypertension,
	"heart disease": ConditionHeartDisease,
	"heart-disease": ConditionHeartDisease,
}

func ParseSmokingStatus(s string) (SmokingStatus, error) {
	if v, ok := smokingAliases[normalize(s)]; ok {
		return v, nil
	}
	return "", unknownCategory("smoking status", s)
}

// ParseCholesterol treats an empty value as unknown.
func ParseCholesterol(s string) (Cholesterol, error) {
	v := Cholesterol(normalize(s))
	if v == "" {
		return CholesterolUnknown, nil
	}
	if err := v.Validate(); err != nil {
		return "", unknownCategory("cholesterol", s)
	}
	return v, nil
}

func ParseSymptoms(values []string) ([]Symptom, error) {
	return parseSet(values, Symptoms, func(s string) (Symptom, bool) {
		v, ok := symptomAliases[s]
		return v, ok
	}, "symptom")
}

func ParseConditions(values []string) ([]Condition, error) {
	return parseSet(values, Conditions, func(s string) (Condition, bool) {
		v, ok := conditionAliases[s]
		return v, ok
	}, "chronic condition")
}

// parseSet drops the none sentinel and duplicates, then returns the members
// in canonical order.
func parseSet[T comparable](
	values []string,
	canonical []T,
	lookup func(string) (T, bool),
	field string,
) ([]T, error) {
	seen := make(map[T]struct{}, len(values))
	for _, raw := range values {
		s := normalize(raw)
		if s == "" || s == NoneSentinel {
			continue
		}
		v, ok := lookup(s)
		if !ok {
			return nil, unknownCategory(field, raw)
		}
		seen[v] = struct{}{}
	}

	result := make([]T, 0, len(seen))
	for _, v := range canonical {
		if _, ok := seen[v]; ok {
			result = append(result, v)
		}
	}
	return slices.Clip(result), nil
}

// Build parses the categorical fields. Numeric ranges are checked by the
// risk engine, not here.
func (in Input) Build() (HealthObservation, error) {
	smoking, err := ParseSmokingStatus(in.SmokingStatus)
	if err != nil {
		return HealthObservation{}, err
	}
	cholesterol, err := ParseCholesterol(in.Cholesterol)
	if err != nil {
		return HealthObservation{}, err
	}
	symptoms, err := ParseSymptoms(in.Symptoms)
	if err != nil {
		return HealthObservation{}, err
	}
	conditions, err := ParseConditions(in.ChronicConditions)
	if err != nil {
		return HealthObservation{}, err
	}

	return HealthObservation{
		Age:                 in.Age,
		WeightKg:            in.WeightKg,
		HeightCm:            in.HeightCm,
		SystolicBp:          in.SystolicBp,
		DiastolicBp:         in.DiastolicBp,
		RestingHeartRate:    in.RestingHeartRate,
		SmokingStatus:       smoking,
		ExerciseDaysPerWeek: in.ExerciseDaysPerWeek,
		Cholesterol:         cholesterol,
		Symptoms:            symptoms,
		ChronicConditions:   conditions,
	}, nil
}
