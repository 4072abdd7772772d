package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"missionhub/internal/repository"
	"missionhub/pkg/media"
	"missionhub/pkg/models"
)

type SubmissionService interface {
	// Submit creates a pending submission, enforcing the mission's per-user limit
	Submit(ctx context.Context, actor *models.Profile, missionID string, in models.SubmissionInput) (*models.Submission, error)
	// SaveDraft creates a draft, or rewrites draftID when given
	SaveDraft(ctx context.Context, actor *models.Profile, missionID, draftID string, in models.SubmissionInput) (*models.Submission, error)
	SubmitDraft(ctx context.Context, actor *models.Profile, draftID string, in models.SubmissionInput) (*models.Submission, error)
	DeleteDraft(ctx context.Context, actor *models.Profile, draftID string) error
	// Update edits the actor's own submission. Editing an approved submission
	// sends it back to pending with no points; wasApproved reports that.
	Update(ctx context.Context, actor *models.Profile, id string, in models.SubmissionInput) (sub *models.Submission, wasApproved bool, err error)
	ListMine(ctx context.Context, userID string) ([]models.Submission, error)

	ListForReview(ctx context.Context, status models.SubmissionStatus, limit, offset int) (*models.PaginatedResponse[models.SubmissionDetail], error)
	Review(ctx context.Context, id string, req models.ReviewRequest) (*models.Submission, error)
	Delete(ctx context.Context, id string) error
}

type submissionService struct {
	submissionRepo repository.SubmissionRepository
	missionRepo    repository.MissionRepository
	uploader       MediaUploader
	notifier       FeedNotifier
}

// NewSubmissionService wires the submission service. uploader and notifier may be nil.
func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	missionRepo repository.MissionRepository,
	uploader MediaUploader,
	notifier FeedNotifier,
) SubmissionService {
	return &submissionService{
		submissionRepo: submissionRepo,
		missionRepo:    missionRepo,
		uploader:       uploader,
		notifier:       notifier,
	}
}

func (s *submissionService) Submit(ctx context.Context, actor *models.Profile, missionID string, in models.SubmissionInput) (*models.Submission, error) {
	if err := requireSubmitter(actor); err != nil {
		return nil, err
	}
	if !hasContent(in) {
		return nil, fmt.Errorf("%w: a submission needs text, answers or media", models.ErrInvalidInput)
	}

	mission, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	if err := s.checkLimit(ctx, actor.ID, mission); err != nil {
		return nil, err
	}

	sub := &models.Submission{
		UserID:    actor.ID,
		MissionID: mission.ID,
		Status:    models.StatusPending,
	}
	if err := s.applyInput(ctx, actor.ID, sub, in); err != nil {
		return nil, err
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	return sub, nil
}

func (s *submissionService) SaveDraft(ctx context.Context, actor *models.Profile, missionID, draftID string, in models.SubmissionInput) (*models.Submission, error) {
	if err := requireSubmitter(actor); err != nil {
		return nil, err
	}

	if draftID != "" {
		draft, err := s.ownedDraft(ctx, actor, draftID)
		if err != nil {
			return nil, err
		}
		if err := s.applyInput(ctx, actor.ID, draft, in); err != nil {
			return nil, err
		}
		if err := s.submissionRepo.Update(ctx, draft); err != nil {
			return nil, fmt.Errorf("failed to update draft: %w", err)
		}
		return draft, nil
	}

	mission, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	draft := &models.Submission{
		UserID:    actor.ID,
		MissionID: mission.ID,
		Status:    models.StatusDraft,
	}
	if err := s.applyInput(ctx, actor.ID, draft, in); err != nil {
		return nil, err
	}
	if err := s.submissionRepo.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return draft, nil
}

func (s *submissionService) SubmitDraft(ctx context.Context, actor *models.Profile, draftID string, in models.SubmissionInput) (*models.Submission, error) {
	if err := requireSubmitter(actor); err != nil {
		return nil, err
	}
	draft, err := s.ownedDraft(ctx, actor, draftID)
	if err != nil {
		return nil, err
	}

	if draft.MissionID != "" {
		mission, err := s.missionRepo.GetByID(ctx, draft.MissionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get mission: %w", err)
		}
		if err := s.checkLimit(ctx, actor.ID, mission); err != nil {
			return nil, err
		}
	}

	if err := s.applyInput(ctx, actor.ID, draft, in); err != nil {
		return nil, err
	}
	draft.Status = models.StatusPending
	if err := s.submissionRepo.Update(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to submit draft: %w", err)
	}
	return draft, nil
}

func (s *submissionService) DeleteDraft(ctx context.Context, actor *models.Profile, draftID string) error {
	if _, err := s.ownedDraft(ctx, actor, draftID); err != nil {
		return err
	}
	if _, err := s.submissionRepo.Delete(ctx, draftID); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func (s *submissionService) Update(ctx context.Context, actor *models.Profile, id string, in models.SubmissionInput) (*models.Submission, bool, error) {
	sub, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get submission: %w", err)
	}
	if actor == nil || sub.UserID != actor.ID {
		return nil, false, models.ErrSubmissionNotFound
	}

	if err := s.applyInput(ctx, actor.ID, sub, in); err != nil {
		return nil, false, err
	}

	wasApproved := sub.Status == models.StatusApproved
	if wasApproved {
		sub.Status = models.StatusPending
		sub.PointsAwarded = 0
	}
	if err := s.submissionRepo.Update(ctx, sub); err != nil {
		return nil, false, fmt.Errorf("failed to update submission: %w", err)
	}

	if wasApproved {
		notify(ctx, s.notifier, ReasonSubmissionUpdated)
	}
	return sub, wasApproved, nil
}

func (s *submissionService) ListMine(ctx context.Context, userID string) ([]models.Submission, error) {
	subs, err := s.submissionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

func (s *submissionService) ListForReview(ctx context.Context, status models.SubmissionStatus, limit, offset int) (*models.PaginatedResponse[models.SubmissionDetail], error) {
	if status != "" && (!status.Valid() || status == models.StatusDraft) {
		return nil, fmt.Errorf("%w: unknown review status %q", models.ErrInvalidInput, status)
	}
	limit = models.ClampLimit(limit, 50, 100)
	if offset < 0 {
		offset = 0
	}

	details, total, err := s.submissionRepo.ListForReview(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return &models.PaginatedResponse[models.SubmissionDetail]{
		Data: details,
		Meta: models.NewPaginationMeta(total, limit, offset),
	}, nil
}

// Review records a moderation decision. Approval awards the requested points,
// or the mission's points_value when none are given; any other outcome
// carries zero points.
func (s *submissionService) Review(ctx context.Context, id string, req models.ReviewRequest) (*models.Submission, error) {
	switch req.Status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		return nil, fmt.Errorf("%w: cannot review into %q", models.ErrInvalidTransition, req.Status)
	}
	if req.PointsAwarded != nil && *req.PointsAwarded < 0 {
		return nil, fmt.Errorf("%w: points must not be negative", models.ErrInvalidInput)
	}

	sub, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub.Status == models.StatusDraft {
		return nil, fmt.Errorf("%w: drafts cannot be reviewed", models.ErrInvalidTransition)
	}

	points := 0
	if req.Status == models.StatusApproved {
		points, err = s.awardFor(ctx, sub, req.PointsAwarded)
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.submissionRepo.UpdateStatus(ctx, id, req.Status, points, req.AdminFeedback)
	if err != nil {
		return nil, fmt.Errorf("failed to review submission: %w", err)
	}
	notify(ctx, s.notifier, ReasonSubmissionReviewed)
	return updated, nil
}

func (s *submissionService) Delete(ctx context.Context, id string) error {
	if _, err := s.submissionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	notify(ctx, s.notifier, ReasonSubmissionDeleted)
	return nil
}

func (s *submissionService) awardFor(ctx context.Context, sub *models.Submission, requested *int) (int, error) {
	if requested != nil {
		return *requested, nil
	}
	if sub.MissionID == "" {
		return 0, nil
	}
	mission, err := s.missionRepo.GetByID(ctx, sub.MissionID)
	if err != nil {
		return 0, fmt.Errorf("failed to get mission: %w", err)
	}
	return mission.PointsValue, nil
}

func (s *submissionService) checkLimit(ctx context.Context, userID string, mission *models.Mission) error {
	if mission.MaxSubmissionsPerUser == nil {
		return nil
	}
	count, err := s.submissionRepo.CountByUserMission(ctx, userID, mission.ID)
	if err != nil {
		return fmt.Errorf("failed to count submissions: %w", err)
	}
	if count >= *mission.MaxSubmissionsPerUser {
		return models.ErrSubmissionLimit
	}
	return nil
}

func (s *submissionService) ownedDraft(ctx context.Context, actor *models.Profile, draftID string) (*models.Submission, error) {
	draft, err := s.submissionRepo.GetByID(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if actor == nil || draft.UserID != actor.ID || draft.Status != models.StatusDraft {
		return nil, models.ErrSubmissionNotFound
	}
	return draft, nil
}

// applyInput writes content onto sub. Answers take precedence over text;
// uploads are stored first and appended after the kept and linked media.
func (s *submissionService) applyInput(ctx context.Context, userID string, sub *models.Submission, in models.SubmissionInput) error {
	if len(in.Answers) > 0 {
		if !json.Valid(in.Answers) {
			return fmt.Errorf("%w: invalid answers format", models.ErrInvalidInput)
		}
		sub.Answers = in.Answers
	} else if in.TextSubmission != nil && strings.TrimSpace(*in.TextSubmission) != "" {
		text := *in.TextSubmission
		sub.TextSubmission = &text
	}

	for _, u := range in.MediaURLs {
		if !media.IsValidURL(u) {
			return fmt.Errorf("%w: media url %q is not http(s)", models.ErrInvalidInput, u)
		}
	}

	added := append([]string{}, in.MediaURLs...)
	if len(in.Uploads) > 0 {
		if s.uploader == nil {
			return fmt.Errorf("%w: media storage is not configured", models.ErrMediaRejected)
		}
		for _, up := range in.Uploads {
			url, err := s.uploader.Upload(ctx, userID, up)
			if err != nil {
				return fmt.Errorf("failed to upload media: %w", err)
			}
			added = append(added, url)
		}
	}

	if len(added) > 0 || len(in.RemovedMediaURLs) > 0 {
		sub.MediaURL = media.Rewrite(sub.MediaURL, in.RemovedMediaURLs, added)
	}
	return nil
}

func requireSubmitter(actor *models.Profile) error {
	if actor == nil {
		return models.ErrUnauthorized
	}
	if !actor.CanSubmit() {
		return fmt.Errorf("%w: view-only profiles cannot submit", models.ErrForbidden)
	}
	return nil
}

func hasContent(in models.SubmissionInput) bool {
	if len(in.Answers) > 0 || len(in.MediaURLs) > 0 || len(in.Uploads) > 0 {
		return true
	}
	return in.TextSubmission != nil && strings.TrimSpace(*in.TextSubmission) != ""
}
