package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"missionhub/internal/cache"
	"missionhub/internal/metrics"
	"missionhub/internal/repository"
	"missionhub/pkg/logger"
	"missionhub/pkg/models"
)

// Feed source names used in logs and metrics
const (
	SourceSubmissions    = "submissions"
	SourceProfileChanges = "profile_changes"
)

// FeedOptions mirrors the feed section of the server config
type FeedOptions struct {
	Limit                   int
	SubmissionWindow        int
	ProfileWindow           int
	SourceTimeout           time.Duration
	CacheTTL                time.Duration
	DropEmptyProfileChanges bool
}

func (o FeedOptions) withDefaults() FeedOptions {
	if o.Limit <= 0 {
		o.Limit = 10
	}
	if o.SubmissionWindow <= 0 {
		o.SubmissionWindow = 10
	}
	if o.ProfileWindow <= 0 {
		o.ProfileWindow = 5
	}
	if o.SourceTimeout <= 0 {
		o.SourceTimeout = 3 * time.Second
	}
	return o
}

// ActivityService builds the community feed. It also implements FeedNotifier
// so changes drop the cached feed.
type ActivityService interface {
	FeedNotifier
	// CommunityFeed returns the merged feed plus like info for viewerID. A
	// failing source degrades to empty; the call itself only fails when the
	// like lookup does.
	CommunityFeed(ctx context.Context, viewerID string, limit int) (*models.ActivityFeed, error)
}

type activityService struct {
	activityRepo repository.ActivityRepository
	likeRepo     repository.LikeRepository
	cache        *cache.Cache
	metrics      *metrics.Metrics
	opts         FeedOptions
}

// NewActivityService wires the feed. cache and m may be nil.
func NewActivityService(
	activityRepo repository.ActivityRepository,
	likeRepo repository.LikeRepository,
	c *cache.Cache,
	m *metrics.Metrics,
	opts FeedOptions,
) ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		likeRepo:     likeRepo,
		cache:        c,
		metrics:      m,
		opts:         opts.withDefaults(),
	}
}

func (s *activityService) CommunityFeed(ctx context.Context, viewerID string, limit int) (*models.ActivityFeed, error) {
	limit = models.ClampLimit(limit, s.opts.Limit, 100)

	entries, err := s.entries(ctx, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if id := e.SubmissionID(); id != "" {
			ids = append(ids, id)
		}
	}

	counts, err := s.likeRepo.CountsFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load like counts: %w", err)
	}
	liked, err := s.likeRepo.LikedBy(ctx, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer likes: %w", err)
	}

	likes := make(map[string]models.LikeInfo, len(ids))
	for _, id := range ids {
		likes[id] = models.LikeInfo{Count: counts[id], Liked: liked[id]}
	}
	return &models.ActivityFeed{Entries: entries, Likes: likes}, nil
}

// entries serves the viewer-independent part of the feed, cache first
func (s *activityService) entries(ctx context.Context, limit int) ([]models.ActivityFeedEntry, error) {
	key := cache.FeedLimitKey(limit)

	var cached []models.ActivityFeedEntry
	found, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warnf("feed cache read failed: %v", err)
	}
	if found {
		s.cacheHit(true)
		return cached, nil
	}
	s.cacheHit(false)

	start := time.Now()
	entries, degraded := s.build(ctx, limit)
	if s.metrics != nil {
		s.metrics.FeedBuild.Observe(time.Since(start).Seconds())
	}

	// a partial feed is served once but never cached
	if degraded {
		return entries, nil
	}
	if err := s.cache.SetJSON(ctx, key, entries, s.opts.CacheTTL); err != nil {
		logger.Warnf("feed cache write failed: %v", err)
	}
	return entries, nil
}

// build fetches both sources concurrently and merges only after both finish.
// degraded reports that at least one source fell back to empty.
func (s *activityService) build(ctx context.Context, limit int) (entries []models.ActivityFeedEntry, degraded bool) {
	var (
		wg             sync.WaitGroup
		subs           []models.SubmissionEvent
		changes        []models.ProfileChangeEvent
		subsOK, chgsOK bool
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		subs, subsOK = fetchSource(ctx, s, SourceSubmissions, func(ctx context.Context) ([]models.SubmissionEvent, error) {
			return s.activityRepo.RecentApprovedSubmissions(ctx, s.opts.SubmissionWindow)
		})
	}()
	go func() {
		defer wg.Done()
		changes, chgsOK = fetchSource(ctx, s, SourceProfileChanges, func(ctx context.Context) ([]models.ProfileChangeEvent, error) {
			return s.activityRepo.RecentProfileChanges(ctx, s.opts.ProfileWindow)
		})
	}()
	wg.Wait()

	if s.opts.DropEmptyProfileChanges {
		changes = DropEmptyProfileChanges(changes)
	}
	return MergeFeed(subs, changes, limit), !subsOK || !chgsOK
}

// fetchSource runs one source under the source timeout. Errors and panics
// degrade to an empty result with ok false.
func fetchSource[T any](ctx context.Context, s *activityService, name string, fetch func(context.Context) ([]T, error)) (out []T, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.SourceTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.sourceFailed(name, start, fmt.Errorf("panic: %v", r))
			out, ok = []T{}, false
		}
	}()

	items, err := fetch(ctx)
	if err != nil {
		s.sourceFailed(name, start, err)
		return []T{}, false
	}
	logger.Feed(name, len(items), time.Since(start), nil)
	return items, true
}

func (s *activityService) sourceFailed(name string, start time.Time, err error) {
	logger.Feed(name, 0, time.Since(start), err)
	if s.metrics != nil {
		s.metrics.FeedSourceErrors.WithLabelValues(name).Inc()
	}
}

func (s *activityService) cacheHit(hit bool) {
	if s.metrics == nil || !s.cache.Enabled() {
		return
	}
	if hit {
		s.metrics.CacheHits.Inc()
	} else {
		s.metrics.CacheMisses.Inc()
	}
}

// ActivityChanged drops every cached feed page
func (s *activityService) ActivityChanged(ctx context.Context, reason string) {
	if !s.cache.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.InvalidatePrefix(ctx, cache.FeedKey); err != nil {
		logger.Warnf("feed cache invalidation after %s failed: %v", reason, err)
	}
}
