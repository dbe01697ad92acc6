// Package estimator computes how long a set takes to build from its piece
// count and a builder's pacing inputs.
package estimator

import (
	"errors"
	"strconv"
)

// ErrInvalidArgument is wrapped by every error EstimateBuildMinutes returns.
var ErrInvalidArgument = errors.New("invalid argument")

// Build styles.
const (
	StyleSlow   = 1
	StyleNormal = 2
	StyleFast   = 3
)

var secondsPerPiece = map[int]float64{
	StyleSlow:   26,
	StyleNormal: 20,
	StyleFast:   14,
}

var difficultyMultiplier = map[int]float64{
	1: 0.95,
	2: 0.98,
	3: 1.00,
	4: 1.08,
	5: 1.15,
}

// ArgumentError names the input EstimateBuildMinutes rejected. It matches
// ErrInvalidArgument under errors.Is.
type ArgumentError struct {
	Field   string
	Message string
}

func (e *ArgumentError) Error() string {
	return ErrInvalidArgument.Error() + ": " + e.Field + " " + e.Message
}

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// CheckLevels validates the pacing inputs without needing a piece count.
func CheckLevels(buildStyle, distractionLevel, organizationLevel, difficultyLevel int) error {
	if _, ok := secondsPerPiece[buildStyle]; !ok {
		return &ArgumentError{Field: "build_style", Message: "must be 1 (slow), 2 (normal), or 3 (fast)"}
	}
	if distractionLevel < 1 || distractionLevel > 10 {
		return &ArgumentError{Field: "distraction_level", Message: "must be between 1 and 10"}
	}
	if organizationLevel < 1 || organizationLevel > 10 {
		return &ArgumentError{Field: "organization_level", Message: "must be between 1 and 10"}
	}
	if _, ok := difficultyMultiplier[difficultyLevel]; !ok {
		return &ArgumentError{Field: "difficulty_level", Message: "must be between 1 and 5"}
	}
	return nil
}

// EstimateBuildMinutes returns the estimated build time in minutes, rounded to
// one decimal place. The product is rounded once, from its exact binary value,
// to the nearest tenth; exact binary ties go to the even digit. So 0.35,
// stored just below 0.35, becomes 0.3 and 874.575, stored just above, becomes
// 874.6.
//
//	buildStyle         1 = slow, 2 = normal, 3 = fast
//	distractionLevel   1 (none) .. 10 (very distracted)
//	organizationLevel  1 (very disorganized) .. 10 (very organized)
//	difficultyLevel    1 (very easy) .. 5 (very difficult)
func EstimateBuildMinutes(pieceCount, buildStyle, distractionLevel, organizationLevel, difficultyLevel int) (float64, error) {
	if pieceCount < 0 {
		return 0, &ArgumentError{Field: "piece_count", Message: "must not be negative"}
	}
	if err := CheckLevels(buildStyle, distractionLevel, organizationLevel, difficultyLevel); err != nil {
		return 0, err
	}

	baseMinutes := float64(pieceCount) * secondsPerPiece[buildStyle] / 60
	// The explicit float64 conversions keep the compiler from fusing the
	// multiply-add, which would change results on FMA-capable platforms.
	distraction := 0.85 + float64(float64(distractionLevel-1)*0.05)
	organization := 1.35 - float64(float64(organizationLevel-1)*0.05)
	difficulty := difficultyMultiplier[difficultyLevel]

	minutes := baseMinutes * distraction * organization * difficulty
	return roundTenths(minutes), nil
}

// roundTenths rounds v to one decimal place in a single step. Scaling by 10
// first would round twice and push values like 0.34999999999999998 up to 0.4.
func roundTenths(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}
