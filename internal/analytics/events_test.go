package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yogeshwarirj/github-monitor-analysis/internal/gitmetrics"
)

func TestClassifyEvent(t *testing.T) {
	assert.Equal(t, KindPush, ClassifyEvent("PushEvent"))
	assert.Equal(t, KindPullRequest, ClassifyEvent("PullRequestEvent"))
	assert.Equal(t, KindMergeReview, ClassifyEvent("PullRequestReviewEvent"))
	assert.Equal(t, KindMergeReview, ClassifyEvent("PullRequestReviewCommentEvent"))
	assert.Equal(t, KindIgnored, ClassifyEvent("WatchEvent"))
	assert.Equal(t, KindIgnored, ClassifyEvent(""))
}

func TestAggregateEvents_DailyAlwaysThirtyEntries(t *testing.T) {
	now := day("2024-05-30")

	for _, events := range [][]gitmetrics.Event{
		nil,
		{{ID: "1", Type: "PushEvent", ActorLogin: "ada", CreatedAt: now}},
	} {
		m := AggregateEvents(events, now)
		assert.Len(t, m.Daily, 30)
		assert.Equal(t, "2024-05-01", m.Daily[0].Label)
		assert.Equal(t, "2024-05-30", m.Daily[29].Label)
	}
}

func TestAggregateEvents_Counts(t *testing.T) {
	now := day("2024-05-30")
	events := []gitmetrics.Event{
		{ID: "1", Type: "PushEvent", ActorLogin: "ada", CreatedAt: now},
		{ID: "2", Type: "PushEvent", ActorLogin: "ada", CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "3", Type: "PullRequestEvent", ActorLogin: "bob", CreatedAt: now},
		{ID: "4", Type: "PullRequestReviewEvent", ActorLogin: "bob", CreatedAt: now},
		{ID: "5", Type: "PullRequestReviewCommentEvent", ActorLogin: "eve", CreatedAt: now},
		{ID: "6", Type: "WatchEvent", ActorLogin: "eve", CreatedAt: now},
	}

	m := AggregateEvents(events, now)

	assert.Equal(t, 6, m.Total)
	assert.Equal(t, 2, m.Pushes)
	assert.Equal(t, 1, m.PullRequests)
	assert.Equal(t, 2, m.MergeReviews)

	// WatchEvent counts toward the total but not toward the daily series.
	assert.Equal(t, 4, m.Daily[29].Count)
	assert.Equal(t, 1, m.Daily[28].Count)
}

func TestAggregateEvents_DistributionOmitsZeroSlots(t *testing.T) {
	now := day("2024-05-30")
	events := []gitmetrics.Event{
		{ID: "1", Type: "PushEvent", ActorLogin: "ada", CreatedAt: now},
		{ID: "2", Type: "WatchEvent", ActorLogin: "ada", CreatedAt: now},
	}

	m := AggregateEvents(events, now)

	assert.Len(t, m.Distribution, 1)
	assert.Equal(t, string(KindPush), m.Distribution[0].Label)
	assert.Equal(t, 1, m.Distribution[0].Count)
	// The counters still carry the zero buckets.
	assert.Equal(t, 0, m.PullRequests)
	assert.Equal(t, 2, m.Total)
}

func TestAggregateEvents_ActorRanking(t *testing.T) {
	now := day("2024-05-30")
	var events []gitmetrics.Event
	for i := 0; i < 12; i++ {
		events = append(events, gitmetrics.Event{
			ID:         fmt.Sprintf("a%d", i),
			Type:       "PushEvent",
			ActorLogin: fmt.Sprintf("actor%d", i),
			CreatedAt:  now,
		})
	}
	// actor3 gets two extra events and must rank first.
	events = append(events,
		gitmetrics.Event{ID: "x1", Type: "WatchEvent", ActorLogin: "actor3", CreatedAt: now},
		gitmetrics.Event{ID: "x2", Type: "WatchEvent", ActorLogin: "actor3", CreatedAt: now},
	)

	m := AggregateEvents(events, now)

	assert.Len(t, m.Actors, 10)
	assert.Equal(t, "actor3", m.Actors[0].Login)
	assert.Equal(t, 3, m.Actors[0].Events)
	// Ties keep first-seen order.
	assert.Equal(t, "actor0", m.Actors[1].Login)
}

func TestAggregateEvents_OldEventsOutsideWindow(t *testing.T) {
	now := day("2024-05-30")
	events := []gitmetrics.Event{
		{ID: "1", Type: "PushEvent", ActorLogin: "ada", CreatedAt: now.AddDate(0, 0, -45)},
	}

	m := AggregateEvents(events, now)

	assert.Equal(t, 1, m.Total)
	assert.Equal(t, 1, m.Pushes)
	for _, p := range m.Daily {
		assert.Zero(t, p.Count)
	}
}
