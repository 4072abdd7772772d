package models

// RankedPoints is the minimal input for positional ranking
type RankedPoints struct {
	ID          string `json:"id"`
	TotalPoints int    `json:"total_points"`
}

// LeaderboardEntry is one profile on the leaderboard
type LeaderboardEntry struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	AvatarURL   *string `json:"avatar_url,omitempty" db:"avatar_url"`
	TotalPoints int     `json:"total_points" db:"total_points"`
	JobTitle    *string `json:"job_title,omitempty" db:"job_title"`
	Department  *string `json:"department,omitempty" db:"department"`
	Country     *string `json:"country,omitempty" db:"country"`
	Rank        int     `json:"rank"`
}

func (e LeaderboardEntry) Points() RankedPoints {
	return RankedPoints{ID: e.ID, TotalPoints: e.TotalPoints}
}

// RankResponse answers a single-profile rank lookup
type RankResponse struct {
	ProfileID   string `json:"profile_id"`
	Rank        int    `json:"rank,omitempty"`
	Ranked      bool   `json:"ranked"`
	TotalPoints int    `json:"total_points"`
	Of          int    `json:"of"`
}
