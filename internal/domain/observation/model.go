package observation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownCategoryValue = errors.New("unknown category value")
)

// NoneSentinel is what form inputs send for "no selection". It never reaches
// a HealthObservation: Input.Build drops it.
const NoneSentinel = "none"

type SmokingStatus string

const (
	SmokingNever   SmokingStatus = "never"
	SmokingFormer  SmokingStatus = "former"
	SmokingCurrent SmokingStatus = "current"
)

type Cholesterol string

const (
	CholesterolNormal  Cholesterol = "normal"
	CholesterolHigh    Cholesterol = "high"
	CholesterolUnknown Cholesterol = "unknown"
)

type Symptom string

const (
	SymptomFever               Symptom = "fever"
	SymptomCough               Symptom = "cough"
	SymptomFatigue             Symptom = "fatigue"
	SymptomDifficultyBreathing Symptom = "difficulty-breathing"
)

type Condition string

const (
	ConditionDiabetes     Condition = "diabetes"
	ConditionHypertension Condition = "hypertension"
	ConditionHeartDisease Condition = "heart disease"
)

// Canonical orderings. Sets are always stored in this order so that anything
// iterating them is deterministic.
var (
	SmokingStatuses = []SmokingStatus{SmokingNever, SmokingFormer, SmokingCurrent}
	Cholesterols    = []Cholesterol{CholesterolNormal, CholesterolHigh, CholesterolUnknown}
	Symptoms        = []Symptom{SymptomFever, SymptomCough, SymptomFatigue, SymptomDifficultyBreathing}
	Conditions      = []Condition{ConditionDiabetes, ConditionHypertension, ConditionHeartDisease}
)

var symptomLabels = map[Symptom]string{
	SymptomFever:               "Fever",
	SymptomCough:               "Cough",
	SymptomFatigue:             "Fatigue",
	SymptomDifficultyBreathing: "Difficulty breathing",
}

// Hypertension shares its label with the blood pressure factor so both
// collapse into one entry in a factor list.
var conditionLabels = map[Condition]string{
	ConditionDiabetes:     "Diabetes",
	ConditionHypertension: "High blood pressure",
	ConditionHeartDisease: "Heart disease",
}

func (s SmokingStatus) Validate() error {
	if !slices.Contains(SmokingStatuses, s) {
		return unknownCategory("smoking status", string(s))
	}
	return nil
}

func (c Cholesterol) Validate() error {
	if !slices.Contains(Cholesterols, c) {
		return unknownCategory("cholesterol", string(c))
	}
	return nil
}

func (s Symptom) Validate() error {
	if _, ok := symptomLabels[s]; !ok {
		return unknownCategory("symptom", string(s))
	}
	return nil
}

func (s Symptom) Label() string {
	return symptomLabels[s]
}

func (c Condition) Validate() error {
	if _, ok := conditionLabels[c]; !ok {
		return unknownCategory("chronic condition", string(c))
	}
	return nil
}

func (c Condition) Label() string {
	return conditionLabels[c]
}

// HealthObservation is treated as a value: nothing in this module mutates one
// after Input.Build returns it.
type HealthObservation struct {
	Age                 int           `json:"age"`
	WeightKg            float64       `json:"weight_kg"`
	HeightCm            float64       `json:"height_cm"`
	SystolicBp          int           `json:"systolic_bp"`
	DiastolicBp         int           `json:"diastolic_bp"`
	RestingHeartRate    int           `json:"resting_heart_rate"`
	SmokingStatus       SmokingStatus `json:"smoking_status"`
	ExerciseDaysPerWeek int           `json:"exercise_days_per_week"`
	Cholesterol         Cholesterol   `json:"cholesterol"`
	Symptoms            []Symptom     `json:"symptoms"`
	ChronicConditions   []Condition   `json:"chronic_conditions"`
}

func (o HealthObservation) HasSymptom(s Symptom) bool {
	return slices.Contains(o.Symptoms, s)
}

func (o HealthObservation) HasCondition(c Condition) bool {
	return slices.Contains(o.ChronicConditions, c)
}

// ValidateCategories reports the first enum field outside its domain.
func (o HealthObservation) ValidateCategories() error {
	if err := o.SmokingStatus.Validate(); err != nil {
		return err
	}
	if err := o.Cholesterol.Validate(); err != nil {
		return err
	}
	for _, s := range o.Symptoms {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, c := range o.ChronicConditions {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func unknownCategory(field, value string) error {
	return errors.Join(fmt.Errorf("%s %q is not recognized", field, value), ErrUnknownCategoryValue)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
