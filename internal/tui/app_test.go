package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTabs(t *testing.T) {
	out := renderTabs(ViewLeaderboard)
	assert.Contains(t, out, "Feed")
	assert.Contains(t, out, "Leaderboard")
	assert.NotContains(t, out, "Login")
}

func TestViewString(t *testing.T) {
	assert.Equal(t, "Feed", ViewFeed.String())
	assert.Equal(t, "Leaderboard", ViewLeaderboard.String())
	assert.Equal(t, "Login", ViewAuth.String())
}
