package models

import (
	"encoding/json"
	"io"
	"time"
)

// SubmissionStatus is the moderation state of a submission
type SubmissionStatus string

const (
	StatusDraft    SubmissionStatus = "draft"
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Submission is a user's attempt at a mission. MediaURL holds the raw stored
// media reference (single URL or JSON array); decode it with pkg/media.
type Submission struct {
	ID             string           `json:"id" db:"id"`
	UserID         string           `json:"user_id" db:"user_id"`
	MissionID      string           `json:"mission_id" db:"mission_id"`
	TextSubmission *string          `json:"text_submission,omitempty" db:"text_submission"`
	MediaURL       *string          `json:"media_url,omitempty" db:"media_url"`
	Answers        json.RawMessage  `json:"answers,omitempty" db:"answers"`
	Status         SubmissionStatus `json:"status" db:"status"`
	PointsAwarded  int              `json:"points_awarded" db:"points_awarded"`
	AdminFeedback  *string          `json:"admin_feedback,omitempty" db:"admin_feedback"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// SubmissionDetail joins a submission with author and mission for review screens
type SubmissionDetail struct {
	Submission
	UserName     string `json:"user_name"`
	UserEmail    string `json:"user_email"`
	MissionTitle string `json:"mission_title"`
	LikeCount    int    `json:"like_count"`
}

// SubmissionInput is the editable content of a submission
type SubmissionInput struct {
	TextSubmission *string         `json:"text_submission,omitempty"`
	Answers        json.RawMessage `json:"answers,omitempty"`
	// MediaURLs are already-hosted URLs supplied by the client
	MediaURLs []string `json:"media_urls,omitempty"`
	// RemovedMediaURLs drops previously stored media on update
	RemovedMediaURLs []string `json:"removed_media_urls,omitempty"`
	Uploads          []Upload `json:"-"`
}

// Upload is a media file received with a submission
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadSeekCloser, error)
}

// ReviewRequest is the admin moderation decision
type ReviewRequest struct {
	Status        SubmissionStatus `json:"status" binding:"required"`
	PointsAwarded *int             `json:"points_awarded,omitempty"`
	AdminFeedback *string          `json:"admin_feedback,omitempty"`
}
