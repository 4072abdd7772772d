package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"missionhub/pkg/media"
	"missionhub/pkg/models"
)

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Footer = text.FormatDefault
	return tw
}

// DescribeEntry renders one feed row as a sentence
func DescribeEntry(e models.ActivityFeedEntry) string {
	switch e.Kind {
	case models.FeedKindSubmission:
		title := e.MissionTitle
		if title == "" {
			title = models.UnknownMissionTitle
		}
		s := fmt.Sprintf("%s completed %q", e.UserName, title)
		if e.PointsAwarded > 0 {
			s += fmt.Sprintf(" (+%d pts)", e.PointsAwarded)
		}
		if m := describeMedia(e.Media); m != "" {
			s += " " + m
		}
		return s
	case models.FeedKindProfileUpdate:
		if len(e.ChangedFields) == 0 {
			return e.UserName + " updated their profile"
		}
		return fmt.Sprintf("%s updated their %s", e.UserName, joinFields(e.ChangedFields))
	}
	return e.UserName
}

// describeMedia summarizes the displayable attachments, e.g. "[2 images, 1 video]"
func describeMedia(items []media.Item) string {
	c := media.CountKinds(media.FilterValid(media.URLs(items)))
	var parts []string
	if c.Images > 0 {
		parts = append(parts, plural(c.Images, "image"))
	}
	if c.Videos > 0 {
		parts = append(parts, plural(c.Videos, "video"))
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// joinFields gives "a", "a and b", "a, b and c"
func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	}
	return strings.Join(fields[:len(fields)-1], ", ") + " and " + fields[len(fields)-1]
}

// Ago formats a timestamp relative to now
func Ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func RenderFeed(w io.Writer, feed *models.ActivityFeed, now time.Time) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"When", "Activity", "Likes", "ID"})
	for _, e := range feed.Entries {
		likes := ""
		if id := e.SubmissionID(); id != "" {
			info := feed.Likes[id]
			mark := "♡"
			if info.Liked {
				mark = "♥"
			}
			likes = fmt.Sprintf("%s %d", mark, info.Count)
		}
		tw.AppendRow(table.Row{Ago(e.CreatedAt, now), DescribeEntry(e), likes, e.ID})
	}
	if len(feed.Entries) == 0 {
		tw.AppendRow(table.Row{"", "no recent activity", "", ""})
	}
	tw.Render()
}

func RenderLeaderboard(w io.Writer, page *models.PaginatedResponse[models.LeaderboardEntry]) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"#", "Name", "Department", "Points"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	for _, e := range page.Data {
		tw.AppendRow(table.Row{e.Rank, e.Name, deref(e.Department), e.TotalPoints})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d of %d", len(page.Data), page.Meta.Total), "", ""})
	tw.Render()
}

func RenderRank(w io.Writer, r *models.RankResponse) {
	if !r.Ranked {
		fmt.Fprintf(w, "%s is not ranked yet (%d points)\n", r.ProfileID, r.TotalPoints)
		return
	}
	fmt.Fprintf(w, "%s is ranked #%d of %d with %d points\n", r.ProfileID, r.Rank, r.Of, r.TotalPoints)
}

func RenderReviewQueue(w io.Writer, page *models.PaginatedResponse[models.SubmissionDetail]) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"ID", "Mission", "Author", "Status", "Submitted", "Text"})
	for _, s := range page.Data {
		tw.AppendRow(table.Row{
			s.ID,
			s.MissionTitle,
			s.UserName,
			s.Status,
			s.CreatedAt.Format("2006-01-02 15:04"),
			text.Trim(deref(s.TextSubmission), 40),
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "total", page.Meta.Total})
	tw.Render()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
