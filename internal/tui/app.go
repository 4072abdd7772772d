// Package tui is the terminal client: a login form, the community feed with
// like buttons and the leaderboard, refreshed live over the activity stream.
package tui

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"missionhub/internal/client"
	"missionhub/internal/tui/config"
	"missionhub/internal/tui/focus"
	"missionhub/internal/tui/styles"
	"missionhub/internal/tui/views"
)

type View int

const (
	ViewAuth View = iota
	ViewFeed
	ViewLeaderboard
)

func (v View) String() string {
	switch v {
	case ViewFeed:
		return "Feed"
	case ViewLeaderboard:
		return "Leaderboard"
	default:
		return "Login"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	config     *config.Config
	configPath string
	api        *client.Client

	focus    *focus.Manager
	keys     KeyMap
	help     help.Model
	showHelp bool

	currentView View
	width       int
	height      int

	userName string
	notice   string

	// streamGen invalidates messages from a stream that was replaced
	streamGen    int
	streamCancel context.CancelFunc

	authModel        views.AuthModel
	feedModel        views.FeedModel
	leaderboardModel views.LeaderboardModel
}

// New builds the app; configPath is where a fresh login is saved
func New(cfg *config.Config, configPath string) *Model {
	api := client.New(cfg.Server.URL)

	m := &Model{
		config:      cfg,
		configPath:  configPath,
		api:         api,
		focus:       focus.NewManager(),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		currentView: ViewAuth,

		authModel:        views.NewAuthModel(api),
		feedModel:        views.NewFeedModel(api, api.LikeCommitter(), cfg.UI.FeedLimit),
		leaderboardModel: views.NewLeaderboardModel(api, cfg.UI.PageSize),
	}
	m.focus.SetMode(focus.ModeInput)

	if cfg.LoggedIn() {
		api.SetToken(cfg.User.Token)
		api.SetUserID(cfg.User.ID)
		m.enterSession(cfg.User.Name, cfg.User.ID)
	}
	return m
}

func (m *Model) enterSession(name, userID string) {
	m.userName = name
	m.leaderboardModel.SetUserID(userID)
	m.currentView = ViewFeed
	m.focus.SetMode(focus.ModeNavigation)
}

func (m Model) Init() tea.Cmd {
	if m.currentView == ViewAuth {
		return m.authModel.Init()
	}
	return m.startSession()
}

// startSession loads both views and opens the live stream. It is a command
// builder run from Update, so the model changes ride on the returned cmd.
func (m Model) startSession() tea.Cmd {
	return tea.Batch(m.feedModel.Init(), func() tea.Msg { return sessionStartedMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if !m.keys.ShouldHandleKey(m.focus.Mode(), msg) {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.shutdown()
			return m, tea.Quit

		case m.currentView == ViewAuth:
			// no navigation before login

		case key.Matches(msg, m.keys.Feed):
			m.currentView = ViewFeed
			return m, nil

		case key.Matches(msg, m.keys.Leaderboard):
			m.currentView = ViewLeaderboard
			return m, nil

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Logout):
			return m.logout()
		}

	case views.AuthSuccessMsg:
		m.authModel, _ = m.authModel.Update(msg)
		m.saveSession(msg)
		m.enterSession(msg.Response.Profile.Name, msg.Response.Profile.ID)
		return m, m.startSession()

	case sessionStartedMsg:
		var feedCmd, lbCmd tea.Cmd
		m.feedModel, feedCmd = m.feedModel.Refresh()
		m.leaderboardModel, lbCmd = m.leaderboardModel.Refresh()
		return m, tea.Batch(feedCmd, lbCmd, m.connectStream())

	case views.FeedErrorMsg:
		if client.IsStatus(msg.Err, http.StatusUnauthorized) {
			m.notice = "session expired, please log in again"
			return m.logout()
		}

	case streamConnectedMsg:
		if msg.gen != m.streamGen {
			return m, nil
		}
		m.feedModel.SetLive(true)
		return m, waitForEvent(msg.gen, msg.events)

	case streamEventMsg:
		if msg.gen != m.streamGen {
			return m, nil
		}
		var feedCmd, lbCmd tea.Cmd
		m.feedModel, feedCmd = m.feedModel.Refresh()
		m.leaderboardModel, lbCmd = m.leaderboardModel.Refresh()
		return m, tea.Batch(feedCmd, lbCmd, waitForEvent(msg.gen, msg.events))

	case streamClosedMsg:
		if msg.gen != m.streamGen {
			return m, nil
		}
		m.feedModel.SetLive(false)
		gen := msg.gen
		return m, tea.Tick(time.Duration(m.config.UI.ReconnectSeconds)*time.Second, func(time.Time) tea.Msg {
			return reconnectMsg{gen: gen}
		})

	case reconnectMsg:
		if msg.gen != m.streamGen || m.currentView == ViewAuth {
			return m, nil
		}
		return m, m.connectStream()
	}

	return m.route(msg)
}

// route sends keys to the active view and everything else to the view that
// owns the message type
func (m Model) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); isKey {
		switch m.currentView {
		case ViewAuth:
			m.authModel, cmd = m.authModel.Update(msg)
		case ViewFeed:
			m.feedModel, cmd = m.feedModel.Update(msg)
		case ViewLeaderboard:
			m.leaderboardModel, cmd = m.leaderboardModel.Update(msg)
		}
		return m, cmd
	}

	switch msg.(type) {
	case views.AuthErrorMsg:
		m.authModel, cmd = m.authModel.Update(msg)
	case views.LeaderboardLoadedMsg, views.LeaderboardErrorMsg:
		m.leaderboardModel, cmd = m.leaderboardModel.Update(msg)
	default:
		m.feedModel, cmd = m.feedModel.Update(msg)
	}
	return m, cmd
}

// connectStream replaces any previous stream with a new one
func (m *Model) connectStream() tea.Cmd {
	if m.streamCancel != nil {
		m.streamCancel()
	}
	m.streamGen++
	ctx, cancel := context.WithCancel(context.Background())
	m.streamCancel = cancel

	gen, api := m.streamGen, m.api
	return func() tea.Msg {
		events, err := api.SubscribeActivity(ctx)
		if err != nil {
			return streamClosedMsg{gen: gen, err: err}
		}
		return streamConnectedMsg{gen: gen, events: events}
	}
}

func waitForEvent(gen int, events <-chan client.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{gen: gen}
		}
		return streamEventMsg{gen: gen, event: ev, events: events}
	}
}

func (m *Model) saveSession(msg views.AuthSuccessMsg) {
	p := msg.Response.Profile
	m.config.User = config.UserConfig{
		ID:    p.ID,
		Name:  p.Name,
		Email: msg.Email,
		Role:  string(p.Role),
		Token: msg.Response.Token,
	}
	if m.configPath == "" {
		return
	}
	if err := m.config.Save(m.configPath); err != nil {
		m.notice = "could not save session: " + err.Error()
	}
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	m.shutdown()
	m.streamGen++
	m.api.SetToken("")
	m.api.SetUserID("")
	m.userName = ""
	m.config.User = config.UserConfig{}
	if m.configPath != "" {
		_ = m.config.Save(m.configPath)
	}
	m.currentView = ViewAuth
	m.focus.SetMode(focus.ModeInput)
	return m, m.authModel.Init()
}

// shutdown stops the stream and drops pending like results
func (m *Model) shutdown() {
	if m.streamCancel != nil {
		m.streamCancel()
		m.streamCancel = nil
	}
	m.feedModel.Close()
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.currentView {
	case ViewAuth:
		content = m.authModel.View()
		if m.notice != "" {
			content = styles.WarningStyle.Render(m.notice) + "\n\n" + content
		}
		return styles.AppStyle.Render(content)
	case ViewFeed:
		content = m.feedModel.View()
	case ViewLeaderboard:
		content = m.leaderboardModel.View()
	}

	header := renderTabs(m.currentView) + "\n" + styles.RenderDivider(max(m.width-4, 0))
	return styles.AppStyle.Render(header + "\n\n" + content + "\n\n" + m.renderStatusBar() + "\n" + m.help.View(m.keys))
}

// renderTabs draws the view switcher for the signed-in views
func renderTabs(current View) string {
	tabs := make([]string, 0, 2)
	for _, v := range []View{ViewFeed, ViewLeaderboard} {
		style := styles.TabStyle
		if v == current {
			style = styles.TabActiveStyle
		}
		tabs = append(tabs, style.Render(v.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderStatusBar() string {
	left := styles.StatusBarActiveStyle.Render("● " + m.currentView.String())
	right := styles.StatusBarStyle.Render(m.userName + " | " + m.config.Server.URL)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 0 {
		gap = 0
	}
	return left + strings.Repeat(" ", gap) + right
}

type sessionStartedMsg struct{}

type streamConnectedMsg struct {
	gen    int
	events <-chan client.StreamEvent
}

type streamEventMsg struct {
	gen    int
	event  client.StreamEvent
	events <-chan client.StreamEvent
}

type streamClosedMsg struct {
	gen int
	err error
}

type reconnectMsg struct {
	gen int
}
