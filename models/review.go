package models

import (
	"time"
)

// Field limits shared by validation and the schema.
const (
	MaxReviewTextLen = 250
	MinLevel         = 1
	MaxLevel         = 10
	MinBuildSpeed    = 1
	MaxBuildSpeed    = 3
)

// Review is one user's build report for a set.
type Review struct {
	ID                uint   `gorm:"primaryKey"`
	SetNum            string `gorm:"not null;size:50;index"`
	UserID            *int   `gorm:"index"`
	BuildTimeMinutes  *int
	DistractionLevel  *int
	OrganizationLevel *int
	BuildSpeed        *int
	ReviewText        *string   `gorm:"size:250"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index"`
}

// ReviewView is the JSON shape clients receive. It omits user_id.
type ReviewView struct {
	ID                uint    `json:"id"`
	SetNum            string  `json:"set_num"`
	BuildTimeMinutes  *int    `json:"build_time_minutes"`
	DistractionLevel  *int    `json:"distraction_level"`
	OrganizationLevel *int    `json:"organization_level"`
	BuildSpeed        *int    `json:"build_speed"`
	ReviewText        *string `json:"review_text"`
	CreatedAt         *string `json:"created_at"`
}

// View converts r to its client JSON shape.
func (r Review) View() ReviewView {
	v := ReviewView{
		ID:                r.ID,
		SetNum:            r.SetNum,
		BuildTimeMinutes:  r.BuildTimeMinutes,
		DistractionLevel:  r.DistractionLevel,
		OrganizationLevel: r.OrganizationLevel,
		BuildSpeed:        r.BuildSpeed,
		ReviewText:        r.ReviewText,
	}
	if !r.CreatedAt.IsZero() {
		ts := r.CreatedAt.UTC().Format(time.RFC3339Nano)
		v.CreatedAt = &ts
	}
	return v
}

// Views converts reviews, never returning nil so the JSON is [] rather than null.
func Views(reviews []Review) []ReviewView {
	out := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r.View())
	}
	return out
}
