package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/burenotti/go_health_risk/internal/domain/observation"
)

var (
	ErrInvalidMeasurement = errors.New("invalid measurement")
)

type BMICategory string

const (
	BMIUnderweight BMICategory = "underweight"
	BMINormal      BMICategory = "normal"
	BMIOverweight  BMICategory = "overweight"
	BMIObese       BMICategory = "obese"
)

type BPCategory string

const (
	BPNormal   BPCategory = "normal"
	BPElevated BPCategory = "elevated"
	BPStage1   BPCategory = "stage1"
	BPStage2   BPCategory = "stage2"
)

// IsHypertension reports whether the category is one of the hypertension stages.
func (c BPCategory) IsHypertension() bool {
	return c == BPStage1 || c == BPStage2
}

type Metrics struct {
	BMI         float64     `json:"bmi"`
	BMICategory BMICategory `json:"bmi_category"`
	BPCategory  BPCategory  `json:"bp_category"`
}

// ComputeMetrics derives BMI and blood pressure bands. BMI is rounded to one
// decimal, half away from zero, before it is classified.
func ComputeMetrics(o observation.HealthObservation) (Metrics, error) {
	if o.HeightCm <= 0 {
		return Metrics{}, invalidMeasurement("height must be positive, got %v cm", o.HeightCm)
	}
	if o.WeightKg <= 0 {
		return Metrics{}, invalidMeasurement("weight must be positive, got %v kg", o.WeightKg)
	}

	bmi := RoundBMI(o.WeightKg / math.Pow(o.HeightCm/100, 2))

	return Metrics{
		BMI:         bmi,
		BMICategory: ClassifyBMI(bmi),
		BPCategory:  ClassifyBP(o.SystolicBp, o.DiastolicBp),
	}, nil
}

func RoundBMI(bmi float64) float64 {
	return math.Round(bmi*10) / 10
}

func ClassifyBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// ClassifyBP checks from the most severe band down.
func ClassifyBP(systolic, diastolic int) BPCategory {
	switch {
	case systolic >= 140 || diastolic >= 90:
		return BPStage2
	case systolic >= 130 || diastolic >= 80:
		return BPStage1
	case systolic >= 120:
		return BPElevated
	default:
		return BPNormal
	}
}

func invalidMeasurement(format string, args ...any) error {
	return errors.Join(fmt.Errorf(format, args...), ErrInvalidMeasurement)
}
