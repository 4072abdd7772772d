package views

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missionhub/pkg/models"
)

type fakeBoard struct {
	total   int
	offsets []int
}

func (f *fakeBoard) Leaderboard(ctx context.Context, limit, offset int) (*models.PaginatedResponse[models.LeaderboardEntry], error) {
	f.offsets = append(f.offsets, offset)
	var data []models.LeaderboardEntry
	for i := offset; i < min(offset+limit, f.total); i++ {
		data = append(data, models.LeaderboardEntry{ID: string(rune('a' + i)), Name: "P", Rank: i + 1, TotalPoints: 100 - i})
	}
	return &models.PaginatedResponse[models.LeaderboardEntry]{Data: data, Meta: models.NewPaginationMeta(f.total, limit, offset)}, nil
}

func (f *fakeBoard) Rank(ctx context.Context, id string) (*models.RankResponse, error) {
	if id == "ghost" {
		return nil, errors.New("not found")
	}
	return &models.RankResponse{ProfileID: id, Ranked: true, Rank: 1, Of: f.total, TotalPoints: 100}, nil
}

func TestLeaderboardPaging(t *testing.T) {
	src := &fakeBoard{total: 5}
	m := NewLeaderboardModel(src, 2)
	m.SetUserID("a")

	m, cmd := m.Refresh()
	loaded, ok := find[LeaderboardLoadedMsg](runCmd(cmd))
	require.True(t, ok)
	require.NotNil(t, loaded.Rank)
	m, _ = m.Update(loaded)
	assert.Contains(t, m.View(), "1-2 of 5")
	assert.Contains(t, m.View(), "#1 of 5")

	m, cmd = m.Update(keyMsg("n"))
	loaded, _ = find[LeaderboardLoadedMsg](runCmd(cmd))
	m, _ = m.Update(loaded)
	assert.Contains(t, m.View(), "3-4 of 5")

	m, cmd = m.Update(keyMsg("n"))
	loaded, _ = find[LeaderboardLoadedMsg](runCmd(cmd))
	m, _ = m.Update(loaded)
	assert.Contains(t, m.View(), "5-5 of 5")

	// last page: no further request
	_, cmd = m.Update(keyMsg("n"))
	assert.Nil(t, cmd)

	m, cmd = m.Update(keyMsg("p"))
	loaded, _ = find[LeaderboardLoadedMsg](runCmd(cmd))
	m, _ = m.Update(loaded)
	assert.Equal(t, []int{0, 2, 4, 2}, src.offsets)
}

func TestLeaderboardUnknownViewerHidesRank(t *testing.T) {
	m := NewLeaderboardModel(&fakeBoard{total: 1}, 10)
	m.SetUserID("ghost")
	m, cmd := m.Refresh()
	loaded, ok := find[LeaderboardLoadedMsg](runCmd(cmd))
	require.True(t, ok)
	assert.Nil(t, loaded.Rank)
	m, _ = m.Update(loaded)
	assert.NotContains(t, m.View(), "You:")
}
