package views

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missionhub/internal/likes"
	"missionhub/pkg/models"
)

type fakeFeed struct {
	mu    sync.Mutex
	feeds []*models.ActivityFeed
	calls int
	err   error
}

func (f *fakeFeed) Feed(ctx context.Context, limit int) (*models.ActivityFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	feed := f.feeds[min(f.calls, len(f.feeds)-1)]
	f.calls++
	return feed, nil
}

func sampleFeed(count int, liked bool) *models.ActivityFeed {
	return &models.ActivityFeed{
		Entries: []models.ActivityFeedEntry{
			{ID: "s1", Kind: models.FeedKindSubmission, UserName: "Ada", MissionTitle: "Ship it", Text: "Released v2 to staging"},
			{ID: "profile-a1", Kind: models.FeedKindProfileUpdate, UserName: "Bo", ChangedFields: []string{"bio"}},
		},
		Likes: map[string]models.LikeInfo{"s1": {Count: count, Liked: liked}},
	}
}

func okCommitter(ctx context.Context, id string, currentlyLiked bool) (likes.CommitResult, error) {
	return likes.CommitResult{Success: true, Liked: !currentlyLiked}, nil
}

func loadFeed(t *testing.T, m FeedModel) FeedModel {
	t.Helper()
	m, cmd := m.Refresh()
	loaded, ok := find[FeedLoadedMsg](runCmd(cmd))
	require.True(t, ok)
	m, _ = m.Update(loaded)
	return m
}

func TestFeedLoadBuildsCoordinators(t *testing.T) {
	m := loadFeed(t, NewFeedModel(&fakeFeed{feeds: []*models.ActivityFeed{sampleFeed(3, true)}}, okCommitter, 20))

	c := m.Coordinator("s1")
	require.NotNil(t, c)
	assert.Equal(t, likes.State{Liked: true, Count: 3}, c.State())
	assert.Nil(t, m.Coordinator("profile-a1"))
	assert.Contains(t, m.View(), `Ada completed "Ship it"`)
	assert.Contains(t, m.View(), "♥ 3")
	assert.Contains(t, m.View(), "Released v2 to staging", "selected submission shows its text")
}

func TestFeedRefreshDestroysOldCoordinators(t *testing.T) {
	src := &fakeFeed{feeds: []*models.ActivityFeed{sampleFeed(3, true), sampleFeed(7, false)}}
	m := loadFeed(t, NewFeedModel(src, okCommitter, 20))
	old := m.Coordinator("s1")

	m = loadFeed(t, m)
	assert.False(t, old.Alive())
	fresh := m.Coordinator("s1")
	require.NotSame(t, old, fresh)
	assert.Equal(t, likes.State{Liked: false, Count: 7}, fresh.State())
}

func TestFeedIgnoresSupersededLoad(t *testing.T) {
	src := &fakeFeed{feeds: []*models.ActivityFeed{sampleFeed(1, false), sampleFeed(9, false)}}
	m := NewFeedModel(src, okCommitter, 20)

	m, first := m.Refresh()
	m, second := m.Refresh()
	firstMsg, _ := find[FeedLoadedMsg](runCmd(first))
	secondMsg, _ := find[FeedLoadedMsg](runCmd(second))

	m, _ = m.Update(secondMsg)
	m, _ = m.Update(firstMsg)
	assert.Equal(t, 9, m.Coordinator("s1").State().Count)
}

func TestFeedToggleLike(t *testing.T) {
	release := make(chan struct{})
	gated := func(ctx context.Context, id string, currentlyLiked bool) (likes.CommitResult, error) {
		<-release
		return okCommitter(ctx, id, currentlyLiked)
	}
	m := loadFeed(t, NewFeedModel(&fakeFeed{feeds: []*models.ActivityFeed{sampleFeed(3, false)}}, gated, 20))

	m, cmd := m.Update(keyMsg(" "))
	require.NotNil(t, cmd)
	assert.Equal(t, likes.State{Liked: true, Count: 4, Pending: true}, m.Coordinator("s1").State())

	// a second press while the first is in flight is refused
	m, again := m.Update(keyMsg(" "))
	assert.Nil(t, again)
	assert.Contains(t, m.View(), "still saving")

	close(release)

	outcome, ok := find[LikeOutcomeMsg](runCmd(cmd))
	require.True(t, ok)
	require.NoError(t, outcome.Outcome.Err)
	m, _ = m.Update(outcome)
	assert.Equal(t, likes.State{Liked: true, Count: 4}, m.Coordinator("s1").State())
}

func TestFeedToggleFailureRollsBack(t *testing.T) {
	failing := func(ctx context.Context, id string, currentlyLiked bool) (likes.CommitResult, error) {
		return likes.CommitResult{Success: false, Error: "only approved submissions can be liked"}, nil
	}
	m := loadFeed(t, NewFeedModel(&fakeFeed{feeds: []*models.ActivityFeed{sampleFeed(3, false)}}, failing, 20))

	m, cmd := m.Update(keyMsg("l"))
	outcome, ok := find[LikeOutcomeMsg](runCmd(cmd))
	require.True(t, ok)
	assert.ErrorIs(t, outcome.Outcome.Err, likes.ErrMutationRejected)

	m, _ = m.Update(outcome)
	assert.Equal(t, likes.State{Liked: false, Count: 3}, m.Coordinator("s1").State())
	assert.Contains(t, m.View(), "only approved submissions can be liked")
}

func TestFeedProfileEntryCannotBeLiked(t *testing.T) {
	m := loadFeed(t, NewFeedModel(&fakeFeed{feeds: []*models.ActivityFeed{sampleFeed(0, false)}}, okCommitter, 20))

	m, _ = m.Update(keyMsg("down"))
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, models.FeedKindProfileUpdate, sel.Kind)

	m, cmd := m.Update(keyMsg(" "))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "can't be liked")
}

func TestFeedError(t *testing.T) {
	m := NewFeedModel(&fakeFeed{err: errors.New("connection refused")}, okCommitter, 20)
	m, cmd := m.Refresh()
	failed, ok := find[FeedErrorMsg](runCmd(cmd))
	require.True(t, ok)
	m, _ = m.Update(failed)
	assert.Contains(t, m.View(), "connection refused")
}
