package core

import (
	"context"
	"fmt"

	"missionhub/internal/repository"
	"missionhub/pkg/models"
)

type MissionService interface {
	List(ctx context.Context) ([]models.Mission, error)
	Get(ctx context.Context, id string) (*models.Mission, error)
	Create(ctx context.Context, req models.MissionRequest) (*models.Mission, error)
	Update(ctx context.Context, id string, req models.MissionRequest) (*models.Mission, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, order []models.MissionOrder) error
}

type missionService struct {
	missionRepo repository.MissionRepository
	notifier    FeedNotifier
}

func NewMissionService(missionRepo repository.MissionRepository, notifier FeedNotifier) MissionService {
	return &missionService{missionRepo: missionRepo, notifier: notifier}
}

func (s *missionService) List(ctx context.Context) ([]models.Mission, error) {
	missions, err := s.missionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	return missions, nil
}

func (s *missionService) Get(ctx context.Context, id string) (*models.Mission, error) {
	m, err := s.missionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	return m, nil
}

func (s *missionService) Create(ctx context.Context, req models.MissionRequest) (*models.Mission, error) {
	if err := models.ValidateMissionRequest(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	m := &models.Mission{}
	req.ApplyTo(m)
	if err := s.missionRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create mission: %w", err)
	}
	return m, nil
}

func (s *missionService) Update(ctx context.Context, id string, req models.MissionRequest) (*models.Mission, error) {
	if err := models.ValidateMissionRequest(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	m, err := s.missionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	oldTitle := m.Title

	req.ApplyTo(m)
	if err := s.missionRepo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update mission: %w", err)
	}
	if m.Title != oldTitle {
		notify(ctx, s.notifier, ReasonMissionChanged)
	}
	return m, nil
}

// Delete removes the mission; its submissions stay and show as Unknown Mission
func (s *missionService) Delete(ctx context.Context, id string) error {
	if err := s.missionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete mission: %w", err)
	}
	notify(ctx, s.notifier, ReasonMissionChanged)
	return nil
}

func (s *missionService) Reorder(ctx context.Context, order []models.MissionOrder) error {
	if len(order) == 0 {
		return fmt.Errorf("%w: order must not be empty", models.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(order))
	for _, o := range order {
		if o.ID == "" {
			return fmt.Errorf("%w: mission id is required", models.ErrInvalidInput)
		}
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("%w: mission %s listed twice", models.ErrInvalidInput, o.ID)
		}
		seen[o.ID] = struct{}{}
	}

	if err := s.missionRepo.UpdateOrder(ctx, order); err != nil {
		return fmt.Errorf("failed to reorder missions: %w", err)
	}
	return nil
}
