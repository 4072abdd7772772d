package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"missionhub/internal/tui/styles"
	"missionhub/pkg/models"
)

type LeaderboardSource interface {
	Leaderboard(ctx context.Context, limit, offset int) (*models.PaginatedResponse[models.LeaderboardEntry], error)
	Rank(ctx context.Context, profileID string) (*models.RankResponse, error)
}

type LeaderboardModel struct {
	source   LeaderboardSource
	pageSize int
	userID   string

	page    *models.PaginatedResponse[models.LeaderboardEntry]
	myRank  *models.RankResponse
	offset  int
	seq     int
	loading bool
	err     error
}

func NewLeaderboardModel(source LeaderboardSource, pageSize int) LeaderboardModel {
	return LeaderboardModel{source: source, pageSize: pageSize}
}

func (m *LeaderboardModel) SetUserID(id string) { m.userID = id }

// Refresh reloads the current page and the viewer's rank
func (m LeaderboardModel) Refresh() (LeaderboardModel, tea.Cmd) {
	m.seq++
	m.loading = true
	seq, source, limit, offset, userID := m.seq, m.source, m.pageSize, m.offset, m.userID

	return m, func() tea.Msg {
		ctx := context.Background()
		page, err := source.Leaderboard(ctx, limit, offset)
		if err != nil {
			return LeaderboardErrorMsg{Seq: seq, Err: err}
		}
		msg := LeaderboardLoadedMsg{Seq: seq, Page: page}
		if userID != "" {
			// an unranked or missing profile only hides the footer
			if r, err := source.Rank(ctx, userID); err == nil {
				msg.Rank = r
			}
		}
		return msg
	}
}

func (m LeaderboardModel) Update(msg tea.Msg) (LeaderboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("right", "pgdown", "n"))):
			if m.page != nil && m.page.Meta.HasMore {
				m.offset += m.pageSize
				return m.Refresh()
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("left", "pgup", "p"))):
			if m.offset > 0 {
				m.offset = max(m.offset-m.pageSize, 0)
				return m.Refresh()
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("r"))):
			return m.Refresh()
		}

	case LeaderboardLoadedMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.page = msg.Page
		m.myRank = msg.Rank
		return m, nil

	case LeaderboardErrorMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m LeaderboardModel) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("🏆 Leaderboard"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styles.ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("Press 'r' to retry"))
		return b.String()
	}
	if m.page == nil {
		b.WriteString(styles.InfoStyle.Render("⟳ Loading..."))
		return b.String()
	}
	if len(m.page.Data) == 0 {
		b.WriteString(styles.InfoStyle.Render("Nobody has scored yet"))
		return b.String()
	}

	for _, e := range m.page.Data {
		style := styles.ListItemStyle
		if e.ID == m.userID {
			style = styles.ListItemSelectedStyle
		}
		dept := ""
		if e.Department != nil {
			dept = styles.ListItemDescStyle.Render(" · " + *e.Department)
		}
		line := fmt.Sprintf("%s %-24s %6d pts", styles.RenderRank(e.Rank), styles.Truncate(e.Name, 24), e.TotalPoints)
		b.WriteString(style.Render(line) + dept)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	meta := m.page.Meta
	last := meta.Offset + len(m.page.Data)
	b.WriteString(styles.HelpStyle.Render(fmt.Sprintf("%d-%d of %d", meta.Offset+1, last, meta.Total)))
	if m.myRank != nil {
		b.WriteString("\n")
		if m.myRank.Ranked {
			b.WriteString(styles.RenderKeyValue("You", fmt.Sprintf("#%d of %d with %d pts", m.myRank.Rank, m.myRank.Of, m.myRank.TotalPoints)))
		} else {
			b.WriteString(styles.RenderKeyValue("You", "not ranked yet"))
		}
	}
	return b.String()
}

type LeaderboardLoadedMsg struct {
	Seq  int
	Page *models.PaginatedResponse[models.LeaderboardEntry]
	Rank *models.RankResponse
}

type LeaderboardErrorMsg struct {
	Seq int
	Err error
}
