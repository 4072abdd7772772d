package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"missionhub/internal/cli"
	"missionhub/internal/likes"
	"missionhub/internal/tui/components"
	"missionhub/internal/tui/styles"
	"missionhub/pkg/models"
)

// FeedSource loads the community feed
type FeedSource interface {
	Feed(ctx context.Context, limit int) (*models.ActivityFeed, error)
}

// FeedModel lists community activity. Every visible submission gets its own
// like coordinator; a reload destroys them all and builds fresh ones from the
// server's counts.
type FeedModel struct {
	source FeedSource
	commit likes.Committer
	limit  int

	entries []models.ActivityFeedEntry
	coords  map[string]*likes.Coordinator

	// seq drops responses from superseded loads
	seq      int
	cursor   int
	loading  bool
	live     bool
	err      error
	notice   string
	loadedAt time.Time
	spinner  components.Spinner
	now      func() time.Time
}

func NewFeedModel(source FeedSource, commit likes.Committer, limit int) FeedModel {
	return FeedModel{
		source:  source,
		commit:  commit,
		limit:   limit,
		coords:  map[string]*likes.Coordinator{},
		spinner: components.NewSpinner("Loading feed..."),
		now:     time.Now,
	}
}

func (m FeedModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Refresh starts a reload
func (m FeedModel) Refresh() (FeedModel, tea.Cmd) {
	m.seq++
	m.loading = true
	seq, source, limit := m.seq, m.source, m.limit
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		feed, err := source.Feed(context.Background(), limit)
		if err != nil {
			return FeedErrorMsg{Seq: seq, Err: err}
		}
		return FeedLoadedMsg{Seq: seq, Feed: feed}
	})
}

// SetLive marks whether the live stream is connected
func (m *FeedModel) SetLive(live bool) { m.live = live }

// Close destroys every coordinator
func (m *FeedModel) Close() {
	for _, c := range m.coords {
		c.Destroy()
	}
	m.coords = map[string]*likes.Coordinator{}
}

func (m FeedModel) Update(msg tea.Msg) (FeedModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("j", "down"))):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("k", "up"))):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys(" ", "l"))):
			return m.toggleSelected()

		case key.Matches(msg, key.NewBinding(key.WithKeys("r"))):
			return m.Refresh()
		}

	case FeedLoadedMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.apply(msg.Feed)
		return m, nil

	case FeedErrorMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		return m, nil

	case LikeOutcomeMsg:
		if msg.Outcome.Discarded {
			return m, nil
		}
		if msg.Outcome.Err != nil {
			m.notice = msg.Outcome.Err.Error()
		}
		return m, nil
	}

	if m.loading {
		return m, m.spinner.Update(msg)
	}
	return m, nil
}

// apply swaps in a new feed and rebuilds the coordinators
func (m *FeedModel) apply(feed *models.ActivityFeed) {
	m.Close()
	m.entries = feed.Entries
	for _, e := range feed.Entries {
		id := e.SubmissionID()
		if id == "" {
			continue
		}
		info := feed.Likes[id]
		m.coords[id] = likes.New(id, info.Liked, info.Count, m.commit)
	}
	if m.cursor >= len(m.entries) {
		m.cursor = max(len(m.entries)-1, 0)
	}
	m.loadedAt = m.now()
}

func (m FeedModel) toggleSelected() (FeedModel, tea.Cmd) {
	if len(m.entries) == 0 {
		return m, nil
	}
	coord := m.coords[m.entries[m.cursor].SubmissionID()]
	if coord == nil {
		m.notice = "profile updates can't be liked"
		return m, nil
	}
	out, ok := coord.Toggle(context.Background())
	if !ok {
		m.notice = "still saving the previous like"
		return m, nil
	}
	m.notice = ""
	return m, func() tea.Msg {
		return LikeOutcomeMsg{Outcome: <-out}
	}
}

// Coordinator returns the coordinator of a visible submission
func (m FeedModel) Coordinator(submissionID string) *likes.Coordinator {
	return m.coords[submissionID]
}

// Selected is the entry under the cursor
func (m FeedModel) Selected() (models.ActivityFeedEntry, bool) {
	if m.cursor >= len(m.entries) {
		return models.ActivityFeedEntry{}, false
	}
	return m.entries[m.cursor], true
}

func (m FeedModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("📰 Community Feed"))
	if m.live {
		b.WriteString(" " + styles.BadgeSuccessStyle.Render("LIVE"))
	}
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.entries) == 0:
		b.WriteString(m.spinner.View())
		return b.String()
	case m.err != nil:
		b.WriteString(styles.ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("Press 'r' to retry"))
		return b.String()
	case len(m.entries) == 0:
		b.WriteString(styles.InfoStyle.Render("No recent activity"))
		return b.String()
	}

	now := m.now()
	for i, e := range m.entries {
		prefix, style := "  ", styles.ListItemStyle
		if i == m.cursor {
			prefix, style = "▸ ", styles.ListItemSelectedStyle
		}

		line := prefix + styles.Truncate(cli.DescribeEntry(e), 60)
		if c := m.coords[e.SubmissionID()]; c != nil {
			st := c.State()
			line += "  " + styles.RenderLikes(st.Liked, st.Pending, st.Count)
		}
		b.WriteString(style.Render(line))
		b.WriteString(" " + styles.ListItemDescStyle.Render(cli.Ago(e.CreatedAt, now)))
		b.WriteString("\n")
		if i == m.cursor && e.Text != "" {
			b.WriteString("    " + styles.SubtitleStyle.Render(styles.Truncate(e.Text, 70)) + "\n")
		}
	}

	if m.notice != "" {
		b.WriteString("\n" + styles.WarningStyle.Render(m.notice) + "\n")
	}
	if !m.loadedAt.IsZero() {
		b.WriteString("\n" + styles.HelpStyle.Render(fmt.Sprintf("updated %s", cli.Ago(m.loadedAt, now))))
	}
	return b.String()
}

type FeedLoadedMsg struct {
	Seq  int
	Feed *models.ActivityFeed
}

type FeedErrorMsg struct {
	Seq int
	Err error
}

// LikeOutcomeMsg reports a finished like commit
type LikeOutcomeMsg struct {
	Outcome likes.Outcome
}
