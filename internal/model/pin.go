package model

import "time"

// Pin is one geotagged wellbeing submission on the 3D floor plan.
type Pin struct {
	ID         int       `json:"id"`
	FloorIndex int       `json:"floor_index"`
	Position   Vec3      `json:"position"`
	Wellbeing  float64   `json:"wellbeing"`
	Note       string    `json:"note,omitempty"`
	GroupKey   *string   `json:"group_key,omitempty"`
	Reasons    []string  `json:"reasons"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreatePinRequest is the public submission payload. Wellbeing is a percent
// value; it is normalized and clamped server-side.
type CreatePinRequest struct {
	FloorIndex *int     `json:"floor_index" binding:"required"`
	X          *float64 `json:"x" binding:"required"`
	Y          *float64 `json:"y" binding:"required"`
	Z          *float64 `json:"z" binding:"required"`
	Wellbeing  *float64 `json:"wellbeing" binding:"required"`
	Reasons    []string `json:"reasons"`
	Note       string   `json:"note" binding:"max=2000"`
	Group      string   `json:"group"`
}
