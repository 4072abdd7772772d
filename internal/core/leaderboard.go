package core

import (
	"context"
	"fmt"
	"time"

	"missionhub/internal/cache"
	"missionhub/internal/repository"
	"missionhub/pkg/logger"
	"missionhub/pkg/models"
)

// LeaderboardService ranks profiles by total points. It implements
// FeedNotifier to drop cached pages when points may have moved.
type LeaderboardService interface {
	FeedNotifier
	Leaderboard(ctx context.Context, limit, offset int) (*models.PaginatedResponse[models.LeaderboardEntry], error)
	// UserRank reports the positional rank of one profile; a profile that
	// is not on the board is returned unranked, not as an error.
	UserRank(ctx context.Context, profileID string) (*models.RankResponse, error)
}

type leaderboardService struct {
	profileRepo repository.ProfileRepository
	cache       *cache.Cache
	ttl         time.Duration
}

func NewLeaderboardService(profileRepo repository.ProfileRepository, c *cache.Cache, ttl time.Duration) LeaderboardService {
	return &leaderboardService{profileRepo: profileRepo, cache: c, ttl: ttl}
}

func (s *leaderboardService) Leaderboard(ctx context.Context, limit, offset int) (*models.PaginatedResponse[models.LeaderboardEntry], error) {
	limit = models.ClampLimit(limit, 50, 100)
	if offset < 0 {
		offset = 0
	}

	key := cache.LeaderboardPageKey(limit, offset)
	var page models.PaginatedResponse[models.LeaderboardEntry]
	if found, err := s.cache.GetJSON(ctx, key, &page); err != nil {
		logger.Warnf("leaderboard cache read failed: %v", err)
	} else if found {
		return &page, nil
	}

	entries, total, err := s.profileRepo.ListByPoints(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	page = models.PaginatedResponse[models.LeaderboardEntry]{
		Data: AssignRanks(entries, offset),
		Meta: models.NewPaginationMeta(total, limit, offset),
	}
	if err := s.cache.SetJSON(ctx, key, page, s.ttl); err != nil {
		logger.Warnf("leaderboard cache write failed: %v", err)
	}
	return &page, nil
}

func (s *leaderboardService) UserRank(ctx context.Context, profileID string) (*models.RankResponse, error) {
	points, err := s.profileRepo.AllPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rankings: %w", err)
	}

	resp := &models.RankResponse{ProfileID: profileID, Of: len(points)}
	resp.Rank, resp.Ranked = Rank(points, profileID)
	if resp.Ranked {
		resp.TotalPoints = points[resp.Rank-1].TotalPoints
		return resp, nil
	}

	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	resp.TotalPoints = profile.TotalPoints
	return resp, nil
}

func (s *leaderboardService) ActivityChanged(ctx context.Context, reason string) {
	if !affectsPoints(reason) || !s.cache.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.InvalidatePrefix(ctx, cache.LeaderboardKey); err != nil {
		logger.Warnf("leaderboard cache invalidation after %s failed: %v", reason, err)
	}
}
