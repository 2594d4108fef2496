// Package derive holds the pure derivation functions of the wizard: calorie
// targets, sleep comparison against the reference average, and weighted
// exercise minutes. Every function is total over its inputs — malformed
// text has already been coerced by the caller, except where noted.
package derive

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// AverageSleepHours is the process-wide reference sleep duration.
	AverageSleepHours = 7.0

	// RecommendedExerciseMinutes is the daily weighted-minute threshold.
	RecommendedExerciseMinutes = 30

	kcalPerKgMale  = 30.0
	kcalPerKgOther = 26.0

	breakfastShare = 0.25

	coefWalk   = 0.8
	coefMuscle = 1.0
	coefRun    = 1.5
	coefOther  = 1.0
)

// FloatOrZero coerces text to a float64, yielding 0 for anything that does
// not parse. This is the soft coercion used for weight and activity
// durations; sleep hours go through ParseSleepHours instead.
func FloatOrZero(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseSleepHours is the strict counterpart of FloatOrZero: a parse failure
// is returned to the caller so the Sleep step can block advancement.
func ParseSleepHours(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("derive: parse sleep hours %q: %w", s, err)
	}
	return f, nil
}

// DailyCalorieTarget returns the daily calorie guideline: 30 kcal/kg for
// "male", 26 kcal/kg otherwise, rounded to the nearest integer. Non-positive
// weight yields 0.
func DailyCalorieTarget(sex string, weightKg float64) int {
	if weightKg <= 0 {
		return 0
	}
	rate := kcalPerKgOther
	if sex == "male" {
		rate = kcalPerKgMale
	}
	return int(math.Round(rate * weightKg))
}

// BreakfastAllotment returns 25% of the daily target, rounded to the
// nearest integer.
func BreakfastAllotment(kcalTarget int) int {
	return int(math.Round(float64(kcalTarget) * breakfastShare))
}

// SleepDirection classifies a sleep duration against the average.
type SleepDirection string

const (
	SleepAbove SleepDirection = "above"
	SleepBelow SleepDirection = "below"
	SleepEqual SleepDirection = "equal"
)

// SleepComparison is the outcome of comparing sleep hours to the average:
// the magnitude of the difference rounded to one decimal, its direction,
// and the user-facing narrative and advice strings.
type SleepComparison struct {
	Magnitude float64
	Direction SleepDirection
	Narrative string
	Advice    string
}

// CompareSleep evaluates sleepHours against averageHours. Exact equality
// after rounding to one decimal is its own branch, not folded into below.
func CompareSleep(sleepHours, averageHours float64) SleepComparison {
	diff := roundTenth(sleepHours - averageHours)
	switch {
	case diff > 0:
		return SleepComparison{
			Magnitude: diff,
			Direction: SleepAbove,
			Narrative: fmt.Sprintf("You slept %.1f hours more than average (plus).", diff),
			Advice:    "You are sleeping well. Keep it up.",
		}
	case diff < 0:
		return SleepComparison{
			Magnitude: -diff,
			Direction: SleepBelow,
			Narrative: fmt.Sprintf("You slept %.1f hours less than average (minus).", -diff),
			Advice:    "Aim for 7 hours. Start small, like turning in 30 minutes earlier.",
		}
	default:
		return SleepComparison{
			Magnitude: 0,
			Direction: SleepEqual,
			Narrative: "Your sleep matches the average.",
			Advice:    "Stable sleep is the foundation of good health.",
		}
	}
}

// ActivityHours are the prior-day exercise durations, in hours.
type ActivityHours struct {
	Muscle float64
	Run    float64
	Walk   float64
	Other  float64
}

// ExerciseAdequacy converts the activity hours to intensity-weighted
// minutes and checks them against recommendedMinutes (inclusive).
func ExerciseAdequacy(h ActivityHours, recommendedMinutes int) (totalMinutes float64, metThreshold bool) {
	totalMinutes = h.Walk*60*coefWalk +
		h.Muscle*60*coefMuscle +
		h.Run*60*coefRun +
		h.Other*60*coefOther
	return totalMinutes, totalMinutes >= float64(recommendedMinutes)
}

func roundTenth(f float64) float64 {
	return math.Round(f*10) / 10
}
