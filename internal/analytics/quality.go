package analytics

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/yogeshwarirj/github-monitor-analysis/internal/gitmetrics"
)

// shortMessageLimit is the length below which a nonempty message counts as
// short.
const shortMessageLimit = 10

// PatternCount is one bucket of the commit-message pattern histogram.
type PatternCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// QualityReport is the heuristic quality assessment of a commit sequence.
type QualityReport struct {
	Score            int            `json:"score"`
	Total            int            `json:"total"`
	Empty            int            `json:"empty"`
	Short            int            `json:"short"`
	Described        int            `json:"described"`
	AvgMessageLength float64        `json:"avg_message_length"`
	HasReadme        bool           `json:"has_readme"`
	Patterns         []PatternCount `json:"patterns"`
}

// patternRules classifies messages into exactly one bucket; the first group
// with a matching substring wins.
var patternRules = []struct {
	label    string
	keywords []string
}{
	{"fix", []string{"fix", "bug", "patch"}},
	{"feat", []string{"feat", "add", "new"}},
	{"refactor", []string{"refactor", "cleanup", "reorganize"}},
	{"docs", []string{"doc", "readme", "comment"}},
	{"test", []string{"test", "spec"}},
	{"style", []string{"style", "format", "lint"}},
}

const otherPattern = "other"

// ClassifyMessage maps a commit message to its pattern bucket label. The
// match is a case-insensitive substring check in fixed precedence order, so
// every message lands in exactly one bucket.
func ClassifyMessage(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range patternRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.label
			}
		}
	}
	return otherPattern
}

// ScoreQuality computes the 0-100 quality score and pattern histogram for a
// commit sequence. The README flag is worth a fifth of the score; its
// content never influences the result.
func ScoreQuality(commits []gitmetrics.Commit, hasReadme bool) QualityReport {
	report := QualityReport{
		Total:     len(commits),
		HasReadme: hasReadme,
	}

	counts := make(map[string]int)
	var totalLength int
	for _, c := range commits {
		msg := strings.TrimSpace(c.Message)
		length := utf8.RuneCountInString(msg)
		totalLength += length

		switch {
		case length == 0:
			report.Empty++
		case length < shortMessageLimit:
			report.Short++
		}

		if describedMessage(msg) {
			report.Described++
		}
		counts[ClassifyMessage(c.Message)]++
	}

	// Divisor floored at 1 so an empty sequence scores without dividing by
	// zero.
	divisor := float64(report.Total)
	if divisor < 1 {
		divisor = 1
	}
	report.AvgMessageLength = float64(totalLength) / divisor

	score := 40*float64(report.Described)/divisor +
		30*float64(report.Total-report.Empty-report.Short)/divisor
	if hasReadme {
		score += 20
	}
	if report.AvgMessageLength > 20 {
		score += 10
	}
	report.Score = int(math.Round(score))

	for _, rule := range patternRules {
		report.Patterns = append(report.Patterns, PatternCount{Label: rule.label, Count: counts[rule.label]})
	}
	report.Patterns = append(report.Patterns, PatternCount{Label: otherPattern, Count: counts[otherPattern]})

	return report
}

// describedMessage reports whether a message has more than one non-blank
// line, i.e. a subject plus some body.
func describedMessage(msg string) bool {
	var lines int
	for _, line := range strings.Split(msg, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
			if lines > 1 {
				return true
			}
		}
	}
	return false
}
