package models

import (
	"encoding/json"
	"time"

	"missionhub/pkg/media"
)

// FeedKind discriminates community activity entries
type FeedKind string

const (
	FeedKindSubmission    FeedKind = "submission"
	FeedKindProfileUpdate FeedKind = "profile_update"
)

const (
	ActivityTypeProfileUpdated = "profile_updated"

	UnknownMissionTitle = "Unknown Mission"
	UnknownUserName     = "Unknown User"

	// ProfileEntryPrefix keeps profile entry ids disjoint from submission ids
	ProfileEntryPrefix = "profile-"
)

// SubmissionEvent is an approved submission joined with its author and mission
type SubmissionEvent struct {
	ID             string           `json:"id" db:"id"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	PointsAwarded  int              `json:"points_awarded" db:"points_awarded"`
	UserID         string           `json:"user_id" db:"user_id"`
	UserName       string           `json:"user_name" db:"user_name"`
	UserAvatarURL  *string          `json:"user_avatar_url,omitempty" db:"user_avatar_url"`
	MissionID      string           `json:"mission_id" db:"mission_id"`
	MissionTitle   string           `json:"mission_title" db:"mission_title"`
	Status         SubmissionStatus `json:"status" db:"status"`
	TextSubmission *string          `json:"text_submission,omitempty" db:"text_submission"`
	MediaURL       *string          `json:"media_url,omitempty" db:"media_url"`
}

// ProfileChangeEvent is a recorded edit of profile fields
type ProfileChangeEvent struct {
	ID            string    `json:"id" db:"id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UserID        string    `json:"user_id" db:"user_id"`
	UserName      string    `json:"user_name" db:"user_name"`
	UserAvatarURL *string   `json:"user_avatar_url,omitempty" db:"user_avatar_url"`
	ChangedFields []string  `json:"changed_fields" db:"changed_fields"`
}

// ProfileActivity is the stored row behind a ProfileChangeEvent
type ProfileActivity struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	ActivityType  string    `json:"activity_type" db:"activity_type"`
	ChangedFields []string  `json:"changed_fields" db:"changed_fields"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ActivityFeedEntry is one row of the merged community feed.
// Submission entries carry MissionTitle and PointsAwarded; profile entries carry ChangedFields.
type ActivityFeedEntry struct {
	ID            string       `json:"id"`
	CreatedAt     time.Time    `json:"created_at"`
	Kind          FeedKind     `json:"kind"`
	UserID        string       `json:"user_id"`
	UserName      string       `json:"user_name"`
	UserAvatarURL *string      `json:"user_avatar_url,omitempty"`
	Status        string       `json:"status"`
	MissionID     string       `json:"mission_id,omitempty"`
	MissionTitle  string       `json:"mission_title,omitempty"`
	PointsAwarded int          `json:"points_awarded,omitempty"`
	Text          string       `json:"text,omitempty"`
	Media         []media.Item `json:"media,omitempty"`
	ChangedFields []string     `json:"changed_fields"`
}

// MarshalJSON lets the kind decide which optional fields appear: submission
// entries omit changed_fields, profile entries always carry a list.
func (e ActivityFeedEntry) MarshalJSON() ([]byte, error) {
	type entry ActivityFeedEntry
	if e.Kind == FeedKindProfileUpdate {
		if e.ChangedFields == nil {
			e.ChangedFields = []string{}
		}
		return json.Marshal(entry(e))
	}
	return json.Marshal(struct {
		entry
		ChangedFields []string `json:"changed_fields,omitempty"`
	}{entry: entry(e)})
}

// SubmissionID returns the id likes are keyed on, or "" for profile entries
func (e ActivityFeedEntry) SubmissionID() string {
	if e.Kind != FeedKindSubmission {
		return ""
	}
	return e.ID
}

// ActivityFeed is the HTTP payload for the community feed
type ActivityFeed struct {
	Entries []ActivityFeedEntry `json:"entries"`
	Likes   map[string]LikeInfo `json:"likes"`
}
