package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/Harshitk-cp/elders/internal/llm"
	"github.com/Harshitk-cp/elders/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	t   *testing.T
	app *App
	gen *llm.MockClient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("RATE_LIMIT_RPS", "1000")
	t.Setenv("RATE_LIMIT_BURST", "1000")
	t.Setenv("API_TOKEN", "")

	gen := llm.NewMockClient()
	sessions := service.NewSessionService(gen, nil, zap.NewNop())
	app := NewApp(sessions, nil, zap.NewNop())
	t.Cleanup(app.Close)

	return &testServer{t: t, app: app, gen: gen}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.app.Router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createSession() uuid.UUID {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/v1/sessions", nil)
	require.Equal(s.t, http.StatusCreated, rec.Code)

	var resp struct {
		Session  domain.Snapshot  `json:"session"`
		Personas []domain.Persona `json:"personas"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(s.t, resp.Personas, 2)
	return resp.Session.SessionID
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) domain.Snapshot {
	t.Helper()
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func TestRouter_FullCycle(t *testing.T) {
	s := newTestServer(t)
	id := s.createSession()
	base := "/v1/sessions/" + id.String()

	rec := s.do(http.MethodPost, base+"/scenario", map[string]string{"text": "Should I take the job in Lagos?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, domain.PhaseAdviceShown, snap.Phase)
	assert.Len(t, snap.Advice, 2)

	rec = s.do(http.MethodPost, base+"/accept", map[string]string{"persona": "Ifá Priest"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap = decodeSnapshot(t, rec)
	assert.Equal(t, domain.ScoreBoard{Yoruba: 20}, snap.Scores)
	require.Len(t, snap.Critiques, 1)

	rec = s.do(http.MethodPost, base+"/challenge", map[string]string{"persona": "igbo"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.PhaseChallengeActive, decodeSnapshot(t, rec).Phase)

	rec = s.do(http.MethodPost, base+"/challenge/response", map[string]string{"text": "fate and destiny guide better"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap = decodeSnapshot(t, rec)
	require.NotNil(t, snap.Challenge)
	require.NotNil(t, snap.Challenge.Verdict)
	assert.Equal(t, domain.VerdictSuccess, *snap.Challenge.Verdict)
	assert.Equal(t, domain.ScoreBoard{Yoruba: 50, Igbo: 10}, snap.Scores)

	rec = s.do(http.MethodPost, base+"/conclude", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.PhaseIdle, decodeSnapshot(t, rec).Phase)

	rec = s.do(http.MethodPost, base+"/conclude", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, base+"/scores/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ScoreBoard{}, decodeSnapshot(t, rec).Scores)

	rec = s.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ForceCritiqueAndConcludeBase(t *testing.T) {
	s := newTestServer(t)
	base := "/v1/sessions/" + s.createSession().String()

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/scenario", map[string]string{"text": "Should I marry?"}).Code)

	rec := s.do(http.MethodPost, base+"/critique", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeSnapshot(t, rec).Critiques, 2)

	rec = s.do(http.MethodPost, base+"/critique/retry", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, base+"/conclude/base", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ScoreBoard{Yoruba: 10, Igbo: 10}, decodeSnapshot(t, rec).Scores)
}

func TestRouter_ErrorMapping(t *testing.T) {
	s := newTestServer(t)
	base := "/v1/sessions/" + s.createSession().String()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad session id", http.MethodGet, "/v1/sessions/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/v1/sessions/" + uuid.NewString(), nil, http.StatusNotFound},
		{"empty scenario", http.MethodPost, base + "/scenario", map[string]string{"text": "  "}, http.StatusBadRequest},
		{"malformed body", http.MethodPost, base + "/scenario", "not an object", http.StatusBadRequest},
		{"accept while idle", http.MethodPost, base + "/accept", map[string]string{"persona": "yoruba"}, http.StatusConflict},
		{"unknown persona", http.MethodPost, base + "/accept", map[string]string{"persona": "akan"}, http.StatusBadRequest},
		{"conclude while idle", http.MethodPost, base + "/conclude/base", nil, http.StatusConflict},
		{"history disabled", http.MethodGet, base + "/history", nil, http.StatusNotImplemented},
		{"bad history limit", http.MethodGet, base + "/history?limit=-2", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestRouter_GenerationErrors(t *testing.T) {
	tests := []struct {
		kind domain.GenerationErrorKind
		want int
	}{
		{domain.GenerationRateLimit, http.StatusTooManyRequests},
		{domain.GenerationAuth, http.StatusBadGateway},
		{domain.GenerationNetwork, http.StatusBadGateway},
		{domain.GenerationMalformed, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			s := newTestServer(t)
			base := "/v1/sessions/" + s.createSession().String()
			s.gen.Error = &domain.GenerationError{Kind: tt.kind, Provider: "mock", Err: errors.New("boom")}

			rec := s.do(http.MethodPost, base+"/scenario", map[string]string{"text": "Should I travel?"})
			assert.Equal(t, tt.want, rec.Code)

			var body struct {
				Kind string `json:"kind"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(tt.kind), body.Kind)

			rec = s.do(http.MethodGet, base, nil)
			assert.Equal(t, domain.PhaseIdle, decodeSnapshot(t, rec).Phase, "failed generation leaves the session idle")
		})
	}
}

func TestRouter_Personas(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/v1/personas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Personas []map[string]any `json:"personas"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Personas, 2)
	assert.Equal(t, "yoruba", list.Personas[0]["id"])
	assert.NotContains(t, list.Personas[0], "system_prompt")
	assert.NotContains(t, list.Personas[0], "SystemPrompt")

	rec = s.do(http.MethodGet, "/v1/personas/igbo", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/v1/personas/akan", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Transcript(t *testing.T) {
	s := newTestServer(t)
	base := "/v1/sessions/" + s.createSession().String()
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/scenario", map[string]string{"text": "Should I build?"}).Code)

	rec := s.do(http.MethodGet, base+"/transcript.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestRouter_Operational(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)

	s.createSession()
	rec = s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var metrics map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.EqualValues(t, 1, metrics["active_sessions"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_BearerToken(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "1000")
	t.Setenv("RATE_LIMIT_BURST", "1000")
	t.Setenv("API_TOKEN", "s3cret")

	app := NewApp(service.NewSessionService(llm.NewMockClient(), nil, zap.NewNop()), nil, zap.NewNop())
	t.Cleanup(app.Close)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/personas", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/personas", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health needs no token")
}
