package core

import "context"

// Reasons carried with activity change notifications
const (
	ReasonSubmissionReviewed = "submission_reviewed"
	ReasonSubmissionUpdated  = "submission_updated"
	ReasonSubmissionDeleted  = "submission_deleted"
	ReasonProfileUpdated     = "profile_updated"
	ReasonMissionChanged     = "mission_changed"
)

// FeedNotifier is told when data behind the community feed or the
// leaderboard has changed. Implementations must not block.
type FeedNotifier interface {
	ActivityChanged(ctx context.Context, reason string)
}

// Notifiers fans a notification out to every member
type Notifiers []FeedNotifier

func (n Notifiers) ActivityChanged(ctx context.Context, reason string) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.ActivityChanged(ctx, reason)
		}
	}
}

// affectsPoints reports whether a change can move leaderboard totals
func affectsPoints(reason string) bool {
	switch reason {
	case ReasonSubmissionReviewed, ReasonSubmissionUpdated, ReasonSubmissionDeleted, ReasonProfileUpdated:
		return true
	}
	return false
}

func notify(ctx context.Context, n FeedNotifier, reason string) {
	if n != nil {
		n.ActivityChanged(ctx, reason)
	}
}
