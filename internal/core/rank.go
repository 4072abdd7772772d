package core

import "missionhub/pkg/models"

// Rank returns the 1-based position of targetID in a list already sorted by
// points descending. Ranking is positional: equal totals get distinct ranks in
// input order. ok is false when the id is absent.
func Rank(sortedDesc []models.RankedPoints, targetID string) (rank int, ok bool) {
	for i, p := range sortedDesc {
		if p.ID == targetID {
			return i + 1, true
		}
	}
	return 0, false
}

// AssignRanks stamps positional ranks on a leaderboard page starting at offset+1.
// The input slice is left untouched.
func AssignRanks(entries []models.LeaderboardEntry, offset int) []models.LeaderboardEntry {
	if offset < 0 {
		offset = 0
	}
	ranked := make([]models.LeaderboardEntry, len(entries))
	for i, e := range entries {
		e.Rank = offset + i + 1
		ranked[i] = e
	}
	return ranked
}
