package core

import (
	"sort"

	"missionhub/pkg/media"
	"missionhub/pkg/models"
)

// MergeFeed combines approved submissions and profile changes into one feed
// ordered by created_at descending, ties broken by ascending id. A positive
// limit truncates the result. Inputs are not modified.
func MergeFeed(subs []models.SubmissionEvent, changes []models.ProfileChangeEvent, limit int) []models.ActivityFeedEntry {
	entries := make([]models.ActivityFeedEntry, 0, len(subs)+len(changes))
	for _, s := range subs {
		entries = append(entries, submissionEntry(s))
	}
	for _, c := range changes {
		entries = append(entries, profileEntry(c))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func submissionEntry(s models.SubmissionEvent) models.ActivityFeedEntry {
	entry := models.ActivityFeedEntry{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		Kind:          models.FeedKindSubmission,
		UserID:        s.UserID,
		UserName:      orPlaceholder(s.UserName, models.UnknownUserName),
		UserAvatarURL: s.UserAvatarURL,
		Status:        string(s.Status),
		MissionID:     s.MissionID,
		MissionTitle:  orPlaceholder(s.MissionTitle, models.UnknownMissionTitle),
		PointsAwarded: s.PointsAwarded,
		Media:         media.Decode(s.MediaURL),
	}
	if s.TextSubmission != nil {
		entry.Text = *s.TextSubmission
	}
	return entry
}

func profileEntry(c models.ProfileChangeEvent) models.ActivityFeedEntry {
	fields := make([]string, len(c.ChangedFields))
	copy(fields, c.ChangedFields)

	return models.ActivityFeedEntry{
		ID:            models.ProfileEntryPrefix + c.ID,
		CreatedAt:     c.CreatedAt,
		Kind:          models.FeedKindProfileUpdate,
		UserID:        c.UserID,
		UserName:      orPlaceholder(c.UserName, models.UnknownUserName),
		UserAvatarURL: c.UserAvatarURL,
		Status:        models.ActivityTypeProfileUpdated,
		ChangedFields: fields,
	}
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}

// DropEmptyProfileChanges removes profile changes that touched no field.
// MergeFeed keeps them; callers opt in to this filter.
func DropEmptyProfileChanges(changes []models.ProfileChangeEvent) []models.ProfileChangeEvent {
	kept := make([]models.ProfileChangeEvent, 0, len(changes))
	for _, c := range changes {
		if len(c.ChangedFields) > 0 {
			kept = append(kept, c)
		}
	}
	return kept
}
