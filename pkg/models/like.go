package models

import "time"

type Like struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	SubmissionID string    `json:"submission_id" db:"submission_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// LikeInfo is the like state of one submission as seen by one viewer
type LikeInfo struct {
	Count int  `json:"count"`
	Liked bool `json:"liked"`
}

// ToggleLikeRequest carries the client's view of the like before the action
type ToggleLikeRequest struct {
	CurrentlyLiked bool `json:"currently_liked"`
}

// ToggleLikeResponse reports the server state after a toggle
type ToggleLikeResponse struct {
	Success bool   `json:"success"`
	Liked   bool   `json:"liked"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}
