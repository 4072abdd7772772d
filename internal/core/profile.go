package core

import (
	"context"
	"fmt"
	"strings"

	"missionhub/internal/repository"
	"missionhub/pkg/logger"
	"missionhub/pkg/models"
)

// Field labels recorded in profile activity
const (
	FieldName              = "name"
	FieldJobTitle          = "job title"
	FieldDepartment        = "department"
	FieldBio               = "bio"
	FieldCountry           = "country"
	FieldCustomerObsession = "customer obsession"
)

// MediaUploader stores an uploaded file and returns its public URL
type MediaUploader interface {
	Upload(ctx context.Context, userID string, up models.Upload) (string, error)
}

type ProfileService interface {
	GetProfile(ctx context.Context, id string) (*models.ProfileView, error)
	// UpdateProfile applies the patch and returns the labels of changed fields
	UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) ([]string, error)
	UpdateAvatar(ctx context.Context, id string, up models.Upload) (*models.Profile, error)
	ListProfiles(ctx context.Context, limit, offset int) (*models.PaginatedResponse[models.Profile], error)
	DeleteProfile(ctx context.Context, id string) error
}

type profileService struct {
	profileRepo  repository.ProfileRepository
	activityRepo repository.ActivityRepository
	uploader     MediaUploader
	notifier     FeedNotifier
}

// NewProfileService wires the profile service. uploader and notifier may be nil.
func NewProfileService(
	profileRepo repository.ProfileRepository,
	activityRepo repository.ActivityRepository,
	uploader MediaUploader,
	notifier FeedNotifier,
) ProfileService {
	return &profileService{
		profileRepo:  profileRepo,
		activityRepo: activityRepo,
		uploader:     uploader,
		notifier:     notifier,
	}
}

func (s *profileService) GetProfile(ctx context.Context, id string) (*models.ProfileView, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile.IsDeleted {
		return nil, models.ErrProfileNotFound
	}
	profile.PasswordHash = ""

	points, err := s.profileRepo.AllPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rankings: %w", err)
	}
	approved, err := s.profileRepo.ApprovedCount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count approved submissions: %w", err)
	}

	view := &models.ProfileView{Profile: *profile, ApprovedCount: approved}
	view.Rank, view.Ranked = Rank(points, id)
	return view, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) ([]string, error) {
	patch.Name = strings.TrimSpace(patch.Name)
	if patch.Name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	}

	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile.IsDeleted {
		return nil, models.ErrProfileNotFound
	}

	changed := ApplyProfilePatch(profile, patch)
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if len(changed) == 0 {
		return changed, nil
	}

	// the edit itself succeeded; a lost activity row only thins the feed
	err = s.activityRepo.RecordProfileChange(ctx, &models.ProfileActivity{
		UserID:        id,
		ActivityType:  models.ActivityTypeProfileUpdated,
		ChangedFields: changed,
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{"profile_id": id, "error": err.Error()}).
			Warn("failed to record profile activity")
		return changed, nil
	}

	notify(ctx, s.notifier, ReasonProfileUpdated)
	return changed, nil
}

// ApplyProfilePatch copies patch onto p and returns the changed field labels.
// Name is compared directly; optional fields count only when non-empty and
// different from the stored value. Empty optional fields never clear data.
func ApplyProfilePatch(p *models.Profile, patch models.ProfilePatch) []string {
	changed := make([]string, 0, 6)

	if patch.Name != p.Name {
		changed = append(changed, FieldName)
	}
	p.Name = patch.Name

	optional := []struct {
		label  string
		value  *string
		target **string
	}{
		{FieldJobTitle, patch.JobTitle, &p.JobTitle},
		{FieldDepartment, patch.Department, &p.Department},
		{FieldBio, patch.Bio, &p.Bio},
		{FieldCountry, patch.Country, &p.Country},
		{FieldCustomerObsession, patch.CustomerObsession, &p.CustomerObsession},
	}
	for _, f := range optional {
		if f.value == nil || *f.value == "" {
			continue
		}
		if *f.target != nil && **f.target == *f.value {
			continue
		}
		v := *f.value
		*f.target = &v
		changed = append(changed, f.label)
	}
	return changed
}

func (s *profileService) UpdateAvatar(ctx context.Context, id string, up models.Upload) (*models.Profile, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: media storage is not configured", models.ErrMediaRejected)
	}

	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	url, err := s.uploader.Upload(ctx, id, up)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	profile.AvatarURL = &url
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	profile.PasswordHash = ""
	return profile, nil
}

func (s *profileService) ListProfiles(ctx context.Context, limit, offset int) (*models.PaginatedResponse[models.Profile], error) {
	limit = models.ClampLimit(limit, 50, 100)
	if offset < 0 {
		offset = 0
	}

	profiles, total, err := s.profileRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	for i := range profiles {
		profiles[i].PasswordHash = ""
	}

	return &models.PaginatedResponse[models.Profile]{
		Data: profiles,
		Meta: models.NewPaginationMeta(total, limit, offset),
	}, nil
}

func (s *profileService) DeleteProfile(ctx context.Context, id string) error {
	if err := s.profileRepo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	notify(ctx, s.notifier, ReasonProfileUpdated)
	return nil
}
