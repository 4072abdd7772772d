package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Mission is a unit of activity that earns points when a submission is approved
type Mission struct {
	ID                    string          `json:"id" db:"id"`
	Title                 string          `json:"title" db:"title"`
	Description           string          `json:"description" db:"description"`
	Instructions          *string         `json:"instructions,omitempty" db:"instructions"`
	Type                  string          `json:"type" db:"type"`
	PointsValue           int             `json:"points_value" db:"points_value"`
	ImageURL              *string         `json:"image_url,omitempty" db:"image_url"`
	MissionNumber         *int            `json:"mission_number,omitempty" db:"mission_number"`
	DisplayOrder          *int            `json:"display_order,omitempty" db:"display_order"`
	MaxSubmissionsPerUser *int            `json:"max_submissions_per_user,omitempty" db:"max_submissions_per_user"`
	SubmissionSchema      json.RawMessage `json:"submission_schema,omitempty" db:"submission_schema"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

// MissionRequest is used for both create and update
type MissionRequest struct {
	Title                 string          `json:"title" binding:"required"`
	Description           string          `json:"description"`
	Instructions          *string         `json:"instructions,omitempty"`
	Type                  string          `json:"type"`
	PointsValue           int             `json:"points_value"`
	ImageURL              *string         `json:"image_url,omitempty"`
	MissionNumber         *int            `json:"mission_number,omitempty"`
	MaxSubmissionsPerUser *int            `json:"max_submissions_per_user,omitempty"`
	SubmissionSchema      json.RawMessage `json:"submission_schema,omitempty"`
}

// MissionOrder assigns a display position
type MissionOrder struct {
	ID           string `json:"id" binding:"required"`
	DisplayOrder int    `json:"display_order"`
}

func ValidateMissionRequest(req *MissionRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}
	if req.PointsValue < 0 {
		return errors.New("points_value must not be negative")
	}
	if req.MaxSubmissionsPerUser != nil && *req.MaxSubmissionsPerUser < 1 {
		return errors.New("max_submissions_per_user must be at least 1")
	}
	if len(req.SubmissionSchema) > 0 && !json.Valid(req.SubmissionSchema) {
		return errors.New("submission_schema must be valid JSON")
	}
	return nil
}

// ApplyTo copies request fields onto a mission
func (req *MissionRequest) ApplyTo(m *Mission) {
	m.Title = strings.TrimSpace(req.Title)
	m.Description = req.Description
	m.Instructions = req.Instructions
	m.Type = req.Type
	if m.Type == "" {
		m.Type = "general"
	}
	m.PointsValue = req.PointsValue
	m.ImageURL = req.ImageURL
	m.MissionNumber = req.MissionNumber
	m.MaxSubmissionsPerUser = req.MaxSubmissionsPerUser
	m.SubmissionSchema = req.SubmissionSchema
}
