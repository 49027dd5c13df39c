package gitmetrics

import (
	"net/url"
	"strings"
)

// RepoLocator identifies a repository on the hosting service.
type RepoLocator struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

func (l RepoLocator) String() string {
	return l.Owner + "/" + l.Repo
}

// ParseRepoURL extracts the owner and repository name from a repository URL
// such as https://github.com/owner/repo. The URL must contain at least two
// non-empty path segments, anything after them is ignored.
func ParseRepoURL(raw string) (RepoLocator, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return RepoLocator{}, &InvalidURLError{URL: raw}
	}

	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) < 2 {
		return RepoLocator{}, &InvalidURLError{URL: raw}
	}

	return RepoLocator{Owner: segments[0], Repo: strings.TrimSuffix(segments[1], ".git")}, nil
}
