package store

import (
	"strings"
	"unicode/utf8"

	"github.com/andrewpaige1/brickstat-api/apierr"
	"github.com/andrewpaige1/brickstat-api/models"
)

// ReviewInput carries everything CreateReview accepts. Nil pointers are
// absent values.
type ReviewInput struct {
	SetNum      string
	SetName     *string
	PieceCount  *int
	ReleaseYear *int

	UserID            *int
	BuildTimeMinutes  *int
	DistractionLevel  *int
	OrganizationLevel *int
	BuildSpeed        *int
	ReviewText        *string
}

// Validate checks fields in declaration order and stops at the first bad one.
func (in ReviewInput) Validate() error {
	if strings.TrimSpace(in.SetNum) == "" {
		return apierr.Invalid("set_num", "is required")
	}
	if len(in.SetNum) > 50 {
		return apierr.Invalid("set_num", "must be at most 50 characters")
	}
	if in.SetName != nil && strings.TrimSpace(*in.SetName) == "" {
		return apierr.Invalid("set_name", "must not be empty")
	}
	if in.PieceCount != nil && *in.PieceCount < 0 {
		return apierr.Invalid("piece_count", "must not be negative")
	}
	if in.BuildTimeMinutes != nil && *in.BuildTimeMinutes < 0 {
		return apierr.Invalid("build_time_minutes", "must not be negative")
	}
	if err := inRange("distraction_level", in.DistractionLevel, models.MinLevel, models.MaxLevel); err != nil {
		return err
	}
	if err := inRange("organization_level", in.OrganizationLevel, models.MinLevel, models.MaxLevel); err != nil {
		return err
	}
	if err := inRange("build_speed", in.BuildSpeed, models.MinBuildSpeed, models.MaxBuildSpeed); err != nil {
		return err
	}
	if in.ReviewText != nil && utf8.RuneCountInString(*in.ReviewText) > models.MaxReviewTextLen {
		return apierr.Invalid("review_text", "must be at most %d characters", models.MaxReviewTextLen)
	}
	return nil
}

func inRange(field string, v *int, lo, hi int) error {
	if v != nil && (*v < lo || *v > hi) {
		return apierr.Invalid(field, "must be between %d and %d", lo, hi)
	}
	return nil
}
