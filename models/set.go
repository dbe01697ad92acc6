package models

import (
	"time"
)

// Set is a construction-toy product, keyed by its vendor catalog number.
type Set struct {
	SetNum      string    `gorm:"primaryKey;size:50" json:"set_num"`
	Name        string    `gorm:"not null;size:255" json:"set_name"`
	PieceCount  *int      `json:"piece_count"`
	ReleaseYear *int      `json:"release_year"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Deleting a set removes its reviews.
	Reviews []Review `gorm:"foreignKey:SetNum;references:SetNum;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
