package roster

import (
	"math"
	"strings"
	"time"
)

// BMICategory doubles as the plan the gym recommends for the range.
type BMICategory string

const (
	BMIUnderweight BMICategory = "Underweight Plan"
	BMINormal      BMICategory = "Normal"
	BMIOverweight  BMICategory = "Fat Loss Plan"
	BMIObese       BMICategory = "Obesity Control Plan"
)

// BMI is a body-mass index rounded to one decimal place.
type BMI struct {
	Value    float64     `json:"value"`
	Category BMICategory `json:"category"`
}

// ComputeBMI returns nil when either measurement is missing or not positive.
func ComputeBMI(weightKg, heightCm float64) *BMI {
	if !(weightKg > 0) || !(heightCm > 0) {
		return nil
	}
	meters := heightCm / 100
	value := math.Round(weightKg/(meters*meters)*10) / 10

	var cat BMICategory
	switch {
	case value < 18.5:
		cat = BMIUnderweight
	case value < 25:
		cat = BMINormal
	case value < 30:
		cat = BMIOverweight
	default:
		cat = BMIObese
	}
	return &BMI{Value: value, Category: cat}
}

// MemberBMI is ComputeBMI over the optional member measurements.
func MemberBMI(weightKg, heightCm *float64) *BMI {
	if weightKg == nil || heightCm == nil {
		return nil
	}
	return ComputeBMI(*weightKg, *heightCm)
}

// PlanMonths maps a free-text plan label to its duration in months.
// "half" is checked before "year" so that "Half-Yearly" is six months.
func PlanMonths(label string) int {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "half"):
		return 6
	case strings.Contains(l, "year"):
		return 12
	case strings.Contains(l, "quarter"):
		return 3
	default:
		return 1
	}
}

// ExpiryFromJoining adds the plan's months to joining. Month-end dates roll
// over the way time.AddDate does (Jan 31 + 1 month is Mar 3 in a common year).
func ExpiryFromJoining(joining time.Time, label string) time.Time {
	return joining.AddDate(0, PlanMonths(label), 0)
}
