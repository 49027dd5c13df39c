package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/machinebox/graphql"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogeshwarirj/github-monitor-analysis/internal/analytics"
	"github.com/yogeshwarirj/github-monitor-analysis/internal/gitmetrics"
	"github.com/yogeshwarirj/github-monitor-analysis/internal/tokenstore"
)

// fakeGQL satisfies the GraphQL client interface used by the repo summary
// handler.
type fakeGQL struct {
	err error
}

func (f *fakeGQL) Run(ctx context.Context, req *graphql.Request, resp interface{}) error {
	return f.err
}

// testServer wires a Server against an httptest fake of the GitHub API.
func testServer(t *testing.T, apiHandler http.HandlerFunc) (*Server, *tokenstore.Holder) {
	t.Helper()

	ts := httptest.NewServer(apiHandler)
	t.Cleanup(ts.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	client := gitmetrics.NewClient(nil, gitmetrics.WithBaseURL(ts.URL+"/"), gitmetrics.WithRateLimit(1000))
	holder := tokenstore.NewHolder(tokenstore.NewMemoryStore(), client)
	require.NoError(t, holder.Load())

	srv := New(log, client, holder, &fakeGQL{})
	srv.now = func() time.Time {
		return time.Date(2024, 5, 30, 12, 0, 0, 0, time.UTC)
	}
	return srv, holder
}

func rosterUpload(t *testing.T, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("roster", "roster.csv")
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/teams", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleRosterUpload(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, rosterUpload(t, "TeamName,GitHubURL\nA,https://github.com/x/y\nB,\n"))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Teams []struct {
			Name    string `json:"name"`
			RepoURL string `json:"repo_url"`
		} `json:"teams"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Teams, 1)
	assert.Equal(t, "A", body.Teams[0].Name)
	assert.Equal(t, "https://github.com/x/y", body.Teams[0].RepoURL)
}

func TestHandleRosterUpload_BadSchema(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, rosterUpload(t, "Name,URL\nA,https://github.com/x/y\n"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad_schema")
}

func TestHandleRosterUpload_MissingFile(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodPost, "/api/teams", strings.NewReader("nope"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xxx")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCommitMetrics(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/x/y/commits", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"sha":"abc","commit":{"message":"fix bug","author":{"name":"Ada","date":"2024-03-02T10:00:00Z"}},"author":{"login":"ada"}}
		]`)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/metrics/commits?url=https://github.com/x/y&from=2024-03-01&to=2024-03-05", nil)
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var m analytics.CommitMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 1, m.Total)
	assert.Len(t, m.Trend, 5)
	assert.Equal(t, "2024-03-02", m.Trend[1].Label)
	assert.Equal(t, 1, m.Trend[1].Count)
	require.Len(t, m.Contributors, 1)
	assert.Equal(t, "ada", m.Contributors[0].Login)
}

func TestHandleCommitMetrics_DefaultWindow(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/metrics/commits?owner=x&repo=y", nil)
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var m analytics.CommitMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Len(t, m.Trend, 30)
	assert.Equal(t, "2024-05-30", m.Trend[29].Label)
}

func TestHandleCommitMetrics_MissingParams(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/metrics/commits", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad_request")
}

func TestHandleCommitMetrics_InvalidURL(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/metrics/commits?url=https://github.com/solo", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_url")
}

func TestHandleCommitMetrics_InvalidWindow(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/metrics/commits?owner=x&repo=y&from=2024-03-10&to=2024-03-01", nil)
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_window")
}

func TestHandleCommitMetrics_NotFound(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/metrics/commits?owner=x&repo=y", nil)
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found_or_private")
}

func TestHandleQuality(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/commits"):
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `[
				{"sha":"a","commit":{"message":"","author":{"name":"Ada","date":"2024-03-02T10:00:00Z"}}},
				{"sha":"b","commit":{"message":"fix bug","author":{"name":"Ada","date":"2024-03-02T11:00:00Z"}}},
				{"sha":"c","commit":{"message":"Add new feature\n\nDetailed body","author":{"name":"Ada","date":"2024-03-02T12:00:00Z"}}}
			]`)
		case strings.HasSuffix(r.URL.Path, "/readme"):
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		}
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/metrics/quality?owner=x&repo=y&from=2024-03-01&to=2024-03-05", nil)
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Quality analytics.QualityReport `json:"quality"`
		Readme  gitmetrics.Readme       `json:"readme"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Quality.Empty)
	assert.Equal(t, 0, body.Quality.Short)
	assert.Equal(t, 1, body.Quality.Described)
	assert.Equal(t, 33, body.Quality.Score)
	assert.False(t, body.Readme.Exists)
}

func TestHandleEvents(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/x/y/events", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"id":"1","type":"PushEvent","actor":{"login":"ada"},"created_at":"2024-05-30T08:00:00Z"},
			{"id":"2","type":"WatchEvent","actor":{"login":"bob"},"created_at":"2024-05-29T08:00:00Z"}
		]`)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/metrics/events?owner=x&repo=y", nil)
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var m analytics.EventMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 2, m.Total)
	assert.Equal(t, 1, m.Pushes)
	assert.Len(t, m.Daily, 30)
	assert.Equal(t, 1, m.Daily[29].Count)
}

func TestTokenLifecycle(t *testing.T) {
	srv, holder := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if strings.Contains(r.Header.Get("Authorization"), "good-token") {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"login":"ada"}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Bad credentials"}`)
	})
	router := srv.Router()

	// Initial state.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/token", nil))
	assert.Contains(t, rec.Body.String(), "none")

	// Valid submission.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/token", strings.NewReader(`{"token":"good-token"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "valid")
	assert.Contains(t, rec.Body.String(), "ada")
	assert.Equal(t, "good-token", holder.Token())

	// Revoked submission discards the stored token.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/token", strings.NewReader(`{"token":"revoked"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid")
	assert.Empty(t, holder.Token())

	// Explicit clear.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/token", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "none")
}

func TestHandleHealth(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
