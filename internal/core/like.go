package core

import (
	"context"
	"fmt"

	"missionhub/internal/repository"
	"missionhub/pkg/models"
)

type LikeService interface {
	// Toggle flips the actor's like given the state the client saw. The call
	// is idempotent: unliking twice or liking twice leaves one outcome.
	Toggle(ctx context.Context, actor *models.Profile, submissionID string, currentlyLiked bool) (*models.ToggleLikeResponse, error)
	GetLikeInfo(ctx context.Context, viewerID, submissionID string) (*models.LikeInfo, error)
}

type likeService struct {
	likeRepo       repository.LikeRepository
	submissionRepo repository.SubmissionRepository
}

func NewLikeService(likeRepo repository.LikeRepository, submissionRepo repository.SubmissionRepository) LikeService {
	return &likeService{likeRepo: likeRepo, submissionRepo: submissionRepo}
}

func (s *likeService) Toggle(ctx context.Context, actor *models.Profile, submissionID string, currentlyLiked bool) (*models.ToggleLikeResponse, error) {
	if err := requireSubmitter(actor); err != nil {
		return nil, err
	}

	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub.Status != models.StatusApproved {
		return nil, models.ErrNotLikeable
	}

	if currentlyLiked {
		_, err = s.likeRepo.Remove(ctx, actor.ID, submissionID)
	} else {
		_, err = s.likeRepo.Add(ctx, actor.ID, submissionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	info, err := s.GetLikeInfo(ctx, actor.ID, submissionID)
	if err != nil {
		return nil, err
	}
	return &models.ToggleLikeResponse{Success: true, Liked: info.Liked, Count: info.Count}, nil
}

func (s *likeService) GetLikeInfo(ctx context.Context, viewerID, submissionID string) (*models.LikeInfo, error) {
	count, err := s.likeRepo.Count(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	info := &models.LikeInfo{Count: count}
	if viewerID != "" {
		info.Liked, err = s.likeRepo.HasLiked(ctx, viewerID, submissionID)
		if err != nil {
			return nil, fmt.Errorf("failed to check like: %w", err)
		}
	}
	return info, nil
}
