package scenario

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when validation inputs cannot produce a
// meaningful classification.
var ErrInvalidInput = errors.New("invalid input")

const (
	// Tolerance is the largest accepted difference, in percent of the
	// correct value.
	Tolerance = 0.5

	SliderLowerFactor = 0.75
	SliderUpperFactor = 1.25
)

// SliderBounds returns the guess range the quiz page offers.
func SliderBounds(basePBO float64) (float64, float64) {
	return basePBO * SliderLowerFactor, basePBO * SliderUpperFactor
}

// Validate recomputes the correct liability from the base PBO and the
// chosen sensitivity's percentage change, and classifies the guess.
// Guesses outside the slider range are coerced to the nearest bound.
func Validate(basePBO, internalPctChange, userGuess float64) (ValidationResult, error) {
	if !isFinite(basePBO) || !isFinite(internalPctChange) {
		return ValidationResult{}, fmt.Errorf("%w: base PBO and internal %% change must be finite", ErrInvalidInput)
	}
	if !isFinite(userGuess) {
		return ValidationResult{}, fmt.Errorf("%w: guess must be finite", ErrInvalidInput)
	}

	correct := roundInt(basePBO * (1 + internalPctChange/100))
	if correct <= 0 {
		return ValidationResult{}, fmt.Errorf("%w: correct PBO %d is not positive", ErrInvalidInput, correct)
	}

	lo, hi := SliderBounds(basePBO)
	guess := math.Min(math.Max(userGuess, lo), hi)

	diff := math.Abs(guess-float64(correct)) * 100 / float64(correct)

	result := Incorrect
	if diff <= Tolerance {
		result = Correct
	}

	return ValidationResult{
		Result:               result,
		CorrectPBO:           correct,
		PercentageDifference: roundHalfUp(diff, 4),
	}, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
