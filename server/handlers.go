package server

import (
	"net/http"
	"time"

	"github.com/yogeshwarirj/github-monitor-analysis/internal/analytics"
	"github.com/yogeshwarirj/github-monitor-analysis/internal/apperr"
	"github.com/yogeshwarirj/github-monitor-analysis/internal/gitmetrics"
	"github.com/yogeshwarirj/github-monitor-analysis/internal/roster"
)

const dayFormat = "2006-01-02"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRosterUpload replaces the team list with the uploaded file's rows.
func (s *Server) handleRosterUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRosterSize); err != nil {
		s.fail(w, r, apperr.New(http.StatusBadRequest, "bad_upload", "could not parse multipart form"))
		return
	}

	file, header, err := r.FormFile("roster")
	if err != nil {
		s.fail(w, r, apperr.New(http.StatusBadRequest, "bad_upload", "missing roster file field"))
		return
	}
	defer file.Close()

	teams, err := roster.Parse(file, header.Filename)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.log.WithField("teams", len(teams)).Info("roster loaded")
	s.respond(w, http.StatusOK, map[string][]roster.Team{"teams": teams})
}

func (s *Server) handleCommitMetrics(w http.ResponseWriter, r *http.Request) {
	loc, err := locatorFromRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	window, err := windowFromRequest(r, s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	commits, err := s.client.ListCommits(r.Context(), loc, window.From, window.To)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, analytics.AggregateCommits(commits, window))
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	loc, err := locatorFromRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	window, err := windowFromRequest(r, s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	commits, err := s.client.ListCommits(r.Context(), loc, window.From, window.To)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	readme, err := s.client.GetReadme(r.Context(), loc)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]interface{}{
		"quality": analytics.ScoreQuality(commits, readme.Exists),
		"readme":  readme,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	loc, err := locatorFromRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	events, err := s.client.ListEvents(r.Context(), loc)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, analytics.AggregateEvents(events, s.now()))
}

func (s *Server) handleRepoSummary(w http.ResponseWriter, r *http.Request) {
	loc, err := locatorFromRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	summary, err := gitmetrics.FetchRepoSummary(r.Context(), s.gql, loc, s.holder.Token())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, summary)
}

type tokenRequest struct {
	Token string `json:"token"`
}

type tokenResponse struct {
	State string `json:"state"`
	Login string `json:"login,omitempty"`
}

func (s *Server) handleTokenValidate(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, apperr.New(http.StatusBadRequest, "bad_request", "could not decode token payload"))
		return
	}

	state, err := s.holder.Validate(r.Context(), req.Token)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, tokenResponse{State: string(state), Login: s.holder.Login()})
}

func (s *Server) handleTokenState(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, tokenResponse{State: string(s.holder.State()), Login: s.holder.Login()})
}

func (s *Server) handleTokenClear(w http.ResponseWriter, r *http.Request) {
	if err := s.holder.Clear(); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, tokenResponse{State: string(s.holder.State())})
}

// locatorFromRequest resolves the target repository from either a full URL
// or explicit owner/repo query parameters.
func locatorFromRequest(r *http.Request) (gitmetrics.RepoLocator, error) {
	q := r.URL.Query()
	if raw := q.Get("url"); raw != "" {
		return gitmetrics.ParseRepoURL(raw)
	}

	owner := q.Get("owner")
	repo := q.Get("repo")
	if owner == "" || repo == "" {
		return gitmetrics.RepoLocator{}, apperr.New(http.StatusBadRequest, "bad_request", "owner and repo (or url) query parameters are required")
	}
	return gitmetrics.RepoLocator{Owner: owner, Repo: repo}, nil
}

// windowFromRequest parses the from/to query parameters; absent either, the
// trailing 30-day default applies.
func windowFromRequest(r *http.Request, now time.Time) (analytics.DateWindow, error) {
	q := r.URL.Query()
	rawFrom, rawTo := q.Get("from"), q.Get("to")
	if rawFrom == "" || rawTo == "" {
		return analytics.DefaultWindow(now), nil
	}

	from, err := time.ParseInLocation(dayFormat, rawFrom, time.UTC)
	if err != nil {
		return analytics.DateWindow{}, apperr.New(http.StatusBadRequest, "invalid_window", "from must be formatted YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(dayFormat, rawTo, time.UTC)
	if err != nil {
		return analytics.DateWindow{}, apperr.New(http.StatusBadRequest, "invalid_window", "to must be formatted YYYY-MM-DD")
	}

	window := analytics.DateWindow{From: from, To: to}
	if !window.Valid() {
		return analytics.DateWindow{}, apperr.New(http.StatusBadRequest, "invalid_window", "from must not be after to")
	}
	return window, nil
}
