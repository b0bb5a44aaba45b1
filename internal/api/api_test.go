// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/campaignwatch/internal/auth"
	"github.com/tomtom215/campaignwatch/internal/authz"
	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/database"
	"github.com/tomtom215/campaignwatch/internal/detection"
	"github.com/tomtom215/campaignwatch/internal/middleware"
	"github.com/tomtom215/campaignwatch/internal/models"
	"github.com/tomtom215/campaignwatch/internal/store"
)

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// memorySink records results in memory.
type memorySink struct {
	mu      sync.Mutex
	results []campaign.Result
	err     error
}

func (s *memorySink) Record(_ context.Context, res campaign.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
	return s.err
}

func (s *memorySink) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.results))
	for i, r := range s.results {
		out[i] = r.CampaignID
	}
	return out
}

type memorySnapshots map[string]campaign.Result

func (m memorySnapshots) Get(_ context.Context, id string) (*campaign.Result, error) {
	res, ok := m[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &res, nil
}

// memoryHistory is a History backed by slices.
type memoryHistory struct {
	mu         sync.Mutex
	scores     []database.ScoreRecord
	alerts     map[string]*database.AlertRecord
	lastFilter database.ScoreFilter
	lastAlerts database.AlertFilter
	failWith   error
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{alerts: make(map[string]*database.AlertRecord)}
}

func (m *memoryHistory) ListScores(_ context.Context, f database.ScoreFilter) ([]database.ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []database.ScoreRecord{}
	for _, s := range m.scores {
		if (f.CampaignID == "" || s.CampaignID == f.CampaignID) && (f.Severity == "" || string(s.Severity) == f.Severity) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryHistory) LatestScore(_ context.Context, id string) (*database.ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.scores) - 1; i >= 0; i-- {
		if m.scores[i].CampaignID == id {
			rec := m.scores[i]
			return &rec, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memoryHistory) Summary(context.Context) (*database.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &database.Summary{ScoringRuns: int64(len(m.scores)), BySeverity: map[string]int64{}}, nil
}

func (m *memoryHistory) GetAlert(_ context.Context, id string) (*database.AlertRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memoryHistory) ListAlerts(_ context.Context, f database.AlertFilter) ([]database.AlertRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAlerts = f
	ids := make([]string, 0, len(m.alerts))
	for id := range m.alerts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := []database.AlertRecord{}
	for _, id := range ids {
		out = append(out, *m.alerts[id])
	}
	return out, nil
}

func (m *memoryHistory) CountAlerts(_ context.Context, _ database.AlertFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts), nil
}

func (m *memoryHistory) AcknowledgeAlert(_ context.Context, id, by string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok {
		return database.ErrNotFound
	}
	now := time.Now()
	a.Acknowledged = true
	a.AcknowledgedBy = by
	a.AcknowledgedAt = &now
	return nil
}

type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

type testServer struct {
	handler  http.Handler
	sink     *memorySink
	history  *memoryHistory
	jwt      *auth.JWTManager
	snapshot memorySnapshots
}

type serverOption func(*Deps, *HandlerConfig)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	cfg := campaign.DefaultConfig()
	cfg.ClassifierBreaker.Name = "api-test-classifier-" + t.Name()
	cfg.NarrativeBreaker.Name = "api-test-narrative-" + t.Name()

	ts := &testServer{sink: &memorySink{}, history: newMemoryHistory(), snapshot: memorySnapshots{}}
	deps := Deps{
		Scorer:       campaign.NewScorer(cfg, nil, nil),
		Burst:        detection.NewBurstDetector(detection.DefaultBurstConfig()),
		Coordination: detection.NewCoordinationDetector(detection.DefaultCoordinationConfig()),
		Bots:         detection.NewBotDetector(detection.DefaultBotConfig()),
		Sink:         ts.sink,
		Snapshots:    ts.snapshot,
		History:      ts.history,
		Latency:      middleware.NewLatencyMonitor(100, 0),
	}
	hcfg := DefaultHandlerConfig()
	for _, opt := range opts {
		opt(&deps, &hcfg)
	}

	chiMW := NewChiMiddleware(ChiMiddlewareConfig{CORSAllowedOrigins: []string{"*"}, RateLimitDisabled: true})
	authn := auth.NewMiddleware(deps.JWT, hcfg.AuthMode)
	var authorizer *authz.Middleware
	if hcfg.AuthMode == auth.ModeJWT {
		enforcer, err := authz.NewEnforcer(authz.DefaultConfig())
		if err != nil {
			t.Fatalf("NewEnforcer: %v", err)
		}
		authorizer = authz.NewMiddleware(enforcer)
	}
	ts.jwt = deps.JWT
	ts.handler = NewRouter(NewHandler(deps, hcfg), chiMW, authn, authorizer).Setup()
	return ts
}

func withJWT(t *testing.T) serverOption {
	return func(d *Deps, c *HandlerConfig) {
		m, err := auth.NewJWTManager("api-test-secret-api-test-secret-0123", time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		creds := auth.NewCredentials()
		if err := creds.Add("admin", "correct-horse-battery", auth.RoleAdmin); err != nil {
			t.Fatal(err)
		}
		d.JWT = m
		d.Credentials = creds
		c.AuthMode = auth.ModeJWT
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, header ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s response: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v\n%s", err, env.Data)
	}
}

// rallyPosts returns copies of one message from four accounts within
// minutes, plus unrelated chatter.
func rallyPosts() []models.Post {
	posts := make([]models.Post, 0, 12)
	for i := 0; i < 8; i++ {
		posts = append(posts, models.Post{
			Platform:  "twitter",
			PostID:    fmt.Sprintf("rally-%d", i),
			AuthorRef: fmt.Sprintf("user%dabc", i%4),
			Text:      "Everyone must join the rally against the new policy #rally",
			PostedAt:  models.NewTimestamp(testEpoch.Add(time.Duration(i) * 2 * time.Minute)),
			Hashtags:  []string{"rally"},
			Shares:    i,
		})
	}
	for i := 0; i < 4; i++ {
		posts = append(posts, models.Post{
			Platform:  "twitter",
			PostID:    fmt.Sprintf("chat-%d", i),
			AuthorRef: fmt.Sprintf("person_%d", i),
			Text:      fmt.Sprintf("Lunch plans for day %d are still open", i),
			PostedAt:  models.NewTimestamp(testEpoch.Add(time.Duration(i+2) * 5 * time.Hour)),
			Likes:     3 + i,
		})
	}
	return posts
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, env envelope, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if env.Status != "error" || env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", env.Error, code)
	}
}

var errBoom = errors.New("boom")
