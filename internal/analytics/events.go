package analytics

import (
	"sort"
	"time"

	"github.com/yogeshwarirj/github-monitor-analysis/internal/gitmetrics"
)

const (
	topActors     = 10
	eventTrailing = 30
)

// Event type tags recognized by the activity view.
const (
	eventPush              = "PushEvent"
	eventPullRequest       = "PullRequestEvent"
	eventPullRequestReview = "PullRequestReviewEvent"
	eventReviewComment     = "PullRequestReviewCommentEvent"
)

// EventKind is the display bucket an event falls into.
type EventKind string

const (
	KindPush        EventKind = "push"
	KindPullRequest EventKind = "pull_request"
	KindMergeReview EventKind = "merge_review"
	KindIgnored     EventKind = "ignored"
)

// ClassifyEvent maps an event type tag to its display bucket. Review events
// and review comments fold into the single merge/review bucket; everything
// else counts toward the total only.
func ClassifyEvent(eventType string) EventKind {
	switch eventType {
	case eventPush:
		return KindPush
	case eventPullRequest:
		return KindPullRequest
	case eventPullRequestReview, eventReviewComment:
		return KindMergeReview
	default:
		return KindIgnored
	}
}

// ActorActivity is one row of the per-actor ranking.
type ActorActivity struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Events    int    `json:"events"`
}

// EventMetrics is everything the activity view renders.
type EventMetrics struct {
	Total        int             `json:"total"`
	Pushes       int             `json:"pushes"`
	PullRequests int             `json:"pull_requests"`
	MergeReviews int             `json:"merge_reviews"`
	Actors       []ActorActivity `json:"actors"`
	Daily        []TrendPoint    `json:"daily"`
	Distribution []PatternCount  `json:"distribution"`
}

// AggregateEvents reduces one page of events into per-actor totals, a fixed
// 30-day trailing daily histogram ending at now, and the push/PR/merge
// distribution. Zero-valued entries are dropped from the distribution only;
// the counters always carry the full numbers.
func AggregateEvents(events []gitmetrics.Event, now time.Time) EventMetrics {
	m := EventMetrics{Total: len(events)}

	byDay := make(map[string]int)
	actorIndex := make(map[string]int)
	var actors []ActorActivity

	for _, e := range events {
		kind := ClassifyEvent(e.Type)
		switch kind {
		case KindPush:
			m.Pushes++
		case KindPullRequest:
			m.PullRequests++
		case KindMergeReview:
			m.MergeReviews++
		}
		if kind != KindIgnored {
			byDay[dayLabel(e.CreatedAt)]++
		}

		login := e.ActorLogin
		if login == "" {
			login = "Unknown"
		}
		i, seen := actorIndex[login]
		if !seen {
			actorIndex[login] = len(actors)
			actors = append(actors, ActorActivity{Login: login, AvatarURL: e.AvatarURL})
			i = actorIndex[login]
		}
		actors[i].Events++
	}

	sort.SliceStable(actors, func(a, b int) bool {
		return actors[a].Events > actors[b].Events
	})
	if len(actors) > topActors {
		actors = actors[:topActors]
	}
	m.Actors = actors

	start := dayStart(now).AddDate(0, 0, -(eventTrailing - 1))
	m.Daily = make([]TrendPoint, 0, eventTrailing)
	for i, d := 0, start; i < eventTrailing; i, d = i+1, d.AddDate(0, 0, 1) {
		label := dayLabel(d)
		m.Daily = append(m.Daily, TrendPoint{Label: label, Count: byDay[label]})
	}

	for _, slot := range []PatternCount{
		{Label: string(KindPush), Count: m.Pushes},
		{Label: string(KindPullRequest), Count: m.PullRequests},
		{Label: string(KindMergeReview), Count: m.MergeReviews},
	} {
		if slot.Count > 0 {
			m.Distribution = append(m.Distribution, slot)
		}
	}

	return m
}
