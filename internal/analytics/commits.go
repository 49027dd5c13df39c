package analytics

import (
	"sort"
	"time"

	"github.com/yogeshwarirj/github-monitor-analysis/internal/gitmetrics"
)

const (
	topContributors = 5
	recentCommits   = 10
)

// TrendPoint is one bucket of a daily (or weekday) series.
type TrendPoint struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Contributor is one row of the contributor ranking.
type Contributor struct {
	Name      string `json:"name"`
	Login     string `json:"login,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Commits   int    `json:"commits"`
}

// CommitMetrics is everything the commit view renders, recomputed from
// scratch on every fetch.
type CommitMetrics struct {
	Window       DateWindow          `json:"window"`
	Total        int                 `json:"total"`
	Trend        []TrendPoint        `json:"trend"`
	Contributors []Contributor       `json:"contributors"`
	Weekdays     []TrendPoint        `json:"weekdays"`
	Recent       []gitmetrics.Commit `json:"recent"`
}

// weekdayOrder fixes the histogram bucket order, Monday first.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// AggregateCommits reduces one page of commits into the trend series,
// contributor ranking, weekday histogram and recent-commit list. The trend
// always has one point per day of the window, zero-filled, so its length is
// a function of the window alone.
func AggregateCommits(commits []gitmetrics.Commit, window DateWindow) CommitMetrics {
	byDay := make(map[string]int)
	for _, c := range commits {
		byDay[dayLabel(c.Date)]++
	}

	days := window.Days()
	trend := make([]TrendPoint, 0, days)
	for i, d := 0, dayStart(window.From); i < days; i, d = i+1, d.AddDate(0, 0, 1) {
		label := dayLabel(d)
		trend = append(trend, TrendPoint{Label: label, Count: byDay[label]})
	}

	weekdays := make([]TrendPoint, len(weekdayOrder))
	weekdayIndex := make(map[time.Weekday]int, len(weekdayOrder))
	for i, wd := range weekdayOrder {
		weekdays[i] = TrendPoint{Label: wd.String()}
		weekdayIndex[wd] = i
	}
	for _, c := range commits {
		weekdays[weekdayIndex[c.Date.UTC().Weekday()]].Count++
	}

	recent := commits
	if len(recent) > recentCommits {
		recent = recent[:recentCommits]
	}

	return CommitMetrics{
		Window:       window,
		Total:        len(commits),
		Trend:        trend,
		Contributors: rankContributors(commits),
		Weekdays:     weekdays,
		Recent:       recent,
	}
}

// rankContributors counts commits per author, descending, ties broken by
// first appearance in the input, keeping the top five.
func rankContributors(commits []gitmetrics.Commit) []Contributor {
	index := make(map[string]int)
	var ranked []Contributor
	for _, c := range commits {
		key := c.AuthorLogin
		if key == "" {
			key = c.AuthorName
		}
		if key == "" {
			key = "Unknown"
		}

		i, seen := index[key]
		if !seen {
			index[key] = len(ranked)
			name := c.AuthorName
			if name == "" {
				name = key
			}
			ranked = append(ranked, Contributor{
				Name:      name,
				Login:     c.AuthorLogin,
				AvatarURL: c.AvatarURL,
			})
			i = index[key]
		}
		ranked[i].Commits++
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Commits > ranked[b].Commits
	})
	if len(ranked) > topContributors {
		ranked = ranked[:topContributors]
	}
	return ranked
}
