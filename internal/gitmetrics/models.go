package gitmetrics

import (
	"time"
)

// Commit is a single commit record as returned by the GitHub commits API.
type Commit struct {
	SHA         string    `json:"sha"`
	AuthorName  string    `json:"author_name"`
	AuthorLogin string    `json:"author_login,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Date        time.Time `json:"date"`
	Message     string    `json:"message"`
}

// Event is a single public repository event.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ActorLogin string    `json:"actor_login"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Readme holds the result of the README existence check. Preview carries at
// most 500 runes of decoded content and is for display only.
type Readme struct {
	Exists  bool   `json:"exists"`
	Preview string `json:"preview,omitempty"`
}

// RepoSummary is the repository metadata shown at the top of the dashboard.
type RepoSummary struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Stars         int    `json:"stars"`
	Forks         int    `json:"forks"`
	DefaultBranch string `json:"default_branch"`
	Language      string `json:"language"`
}
