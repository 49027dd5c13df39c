package gitmetrics

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// pageSize is the single page requested from every list endpoint. The
// dashboard never paginates past the first page.
const pageSize = 100

// readmePreviewLimit bounds the decoded README preview.
const readmePreviewLimit = 500

// TokenSource supplies the access token threaded into every fetch. An empty
// token means unauthenticated access.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource returning a fixed value.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// Client talks to the hosting API. Calls share a rate limiter so a burst of
// dashboard views cannot exhaust the unauthenticated quota immediately.
type Client struct {
	tokens  TokenSource
	limiter *rate.Limiter
	baseURL *url.URL
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at an alternate API root, used by tests.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		u, err := url.Parse(raw)
		if err != nil {
			return
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.baseURL = u
	}
}

// WithRateLimit overrides the default requests-per-second budget.
func WithRateLimit(rps int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient builds a Client. tokens may be nil for unauthenticated access.
func NewClient(tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// api builds a go-github client carrying the current token, if any.
func (c *Client) api(ctx context.Context, token string) *github.Client {
	httpClient := oauth2.NewClient(ctx, nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	gh := github.NewClient(httpClient)
	if c.baseURL != nil {
		gh.BaseURL = c.baseURL
	}
	return gh
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// ListCommits fetches one page of commits authored within [from, to+24h).
func (c *Client) ListCommits(ctx context.Context, loc RepoLocator, from, to time.Time) ([]Commit, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	opts := &github.CommitsListOptions{
		Since:       from.UTC(),
		Until:       to.UTC().Add(24 * time.Hour),
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	raw, _, err := c.api(ctx, c.token()).Repositories.ListCommits(ctx, loc.Owner, loc.Repo, opts)
	if err != nil {
		return nil, classifyError(err)
	}

	commits := make([]Commit, 0, len(raw))
	for _, rc := range raw {
		commits = append(commits, Commit{
			SHA:         rc.GetSHA(),
			AuthorName:  rc.GetCommit().GetAuthor().GetName(),
			AuthorLogin: rc.GetAuthor().GetLogin(),
			AvatarURL:   rc.GetAuthor().GetAvatarURL(),
			Date:        rc.GetCommit().GetAuthor().GetDate().Time,
			Message:     rc.GetCommit().GetMessage(),
		})
	}
	return commits, nil
}

// ListEvents fetches one page of recent public events for the repository.
func (c *Client) ListEvents(ctx context.Context, loc RepoLocator) ([]Event, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	opts := &github.ListOptions{PerPage: pageSize}
	raw, _, err := c.api(ctx, c.token()).Activity.ListRepositoryEvents(ctx, loc.Owner, loc.Repo, opts)
	if err != nil {
		return nil, classifyError(err)
	}

	events := make([]Event, 0, len(raw))
	for _, re := range raw {
		events = append(events, Event{
			ID:         re.GetID(),
			Type:       re.GetType(),
			ActorLogin: re.GetActor().GetLogin(),
			AvatarURL:  re.GetActor().GetAvatarURL(),
			CreatedAt:  re.GetCreatedAt().Time,
		})
	}
	return events, nil
}

// GetReadme checks for a README on the default branch. A missing README is
// not an error; it yields Exists=false.
func (c *Client) GetReadme(ctx context.Context, loc RepoLocator) (Readme, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Readme{}, fmt.Errorf("rate limiter: %w", err)
	}

	content, _, err := c.api(ctx, c.token()).Repositories.GetReadme(ctx, loc.Owner, loc.Repo, nil)
	if err != nil {
		classified := classifyError(err)
		var apiErr *APIError
		if errors.As(classified, &apiErr) && apiErr.Kind == KindNotFoundOrPrivate {
			return Readme{Exists: false}, nil
		}
		return Readme{}, classified
	}

	decoded, err := content.GetContent()
	if err != nil {
		// Undecodable content still proves the README exists.
		return Readme{Exists: true}, nil
	}

	runes := []rune(decoded)
	if len(runes) > readmePreviewLimit {
		runes = runes[:readmePreviewLimit]
	}
	return Readme{Exists: true, Preview: string(runes)}, nil
}

// CheckCredential performs the authenticated identity check for the given
// token and returns the login it resolves to.
func (c *Client) CheckCredential(ctx context.Context, token string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	user, _, err := c.api(ctx, token).Users.Get(ctx, "")
	if err != nil {
		return "", classifyError(err)
	}
	return user.GetLogin(), nil
}
