package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"surveyassistant/internal/cache"
	"surveyassistant/internal/config"
	"surveyassistant/internal/model"
	"surveyassistant/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	handler http.Handler
	cfg     *config.Config
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		JWTSecret:       "router-secret",
		HostUsername:    "host",
		HostPassword:    "pw",
		SessionCapacity: 8,
		ProgressTTL:     time.Hour,
		CORSOrigins:     []string{"https://app.example"},
	}
	authSvc := service.NewAuthService(cfg)
	sessionSvc, err := service.NewSessionService(cfg, nil, cache.NewProgressCache(client, cfg.ProgressTTL), authSvc, nil)
	require.NoError(t, err)

	return &apiFixture{
		handler: NewRouter(&Container{
			AuthService:    authSvc,
			SessionService: sessionSvc,
			CORSOrigins:    cfg.CORSOrigins,
		}),
		cfg: cfg,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(context.Background())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRespondentFlow(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, http.MethodPost, "/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	start := decodeBody[model.StartSessionResponse](t, rec)
	base := "/v1/sessions/" + start.SessionID

	for _, text := range []string{"ok", "42", "80kg"} {
		rec = f.do(t, http.MethodPost, base+"/answers", start.Token, map[string]string{"text": text})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	reply := decodeBody[map[string]any](t, rec)
	assert.Contains(t, reply["prompt"], "height")
	assert.Equal(t, false, reply["done"])

	rec = f.do(t, http.MethodGet, base, start.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decodeBody[model.SessionInfo](t, rec)
	assert.Equal(t, model.SessionActive, info.Status)
	assert.Equal(t, 2, info.Progress.Answered)

	rec = f.do(t, http.MethodGet, base+"/fields?path=basic_profile.weight_pounds&path=basic_profile.age", start.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"basic_profile":{"weight_pounds":176,"age":42}}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, base+"/fields?path=nope.nothing", start.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, base+"/fields", start.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/answers", start.Token, map[string]string{"text": "stop"})
	require.Equal(t, http.StatusOK, rec.Code)
	reply = decodeBody[map[string]any](t, rec)
	assert.Equal(t, true, reply["done"])
	assert.NotContains(t, reply, "prompt")

	rec = f.do(t, http.MethodGet, base+"/document", start.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decodeBody[model.Document](t, rec)
	require.NotNil(t, doc.Meta.CompletedAt)
	assert.Equal(t, 176, *doc.BasicProfile.WeightPounds)
}

func TestRespondentAuthorization(t *testing.T) {
	f := newAPI(t)
	first := decodeBody[model.StartSessionResponse](t, f.do(t, http.MethodPost, "/v1/sessions", "", nil))
	second := decodeBody[model.StartSessionResponse](t, f.do(t, http.MethodPost, "/v1/sessions", "", nil))

	rec := f.do(t, http.MethodGet, "/v1/sessions/"+first.SessionID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/sessions/"+first.SessionID, second.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/sessions/"+first.SessionID+"/answers", first.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHostEndpoints(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Username: "host", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Username: "  ", Password: "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Username: "host", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeBody[model.LoginResponse](t, rec)

	start := decodeBody[model.StartSessionResponse](t, f.do(t, http.MethodPost, "/v1/sessions", "", nil))

	rec = f.do(t, http.MethodGet, "/v1/progress/"+start.SessionID, start.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "invalid or expired token", decodeBody[map[string]string](t, rec)["error"])

	rec = f.do(t, http.MethodGet, "/v1/progress/"+start.SessionID+"?token="+login.Token, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/progress/"+start.SessionID, login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeBody[model.ProgressSnapshot](t, rec)
	assert.Equal(t, model.SessionActive, snap.Status)
	assert.Equal(t, 12, snap.Progress.TotalQuestions)

	rec = f.do(t, http.MethodGet, "/v1/results/"+start.SessionID, login.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.do(t, http.MethodPost, "/v1/sessions/"+start.SessionID+"/answers", start.Token, map[string]string{"text": "finish"})

	rec = f.do(t, http.MethodGet, "/v1/results/"+start.SessionID, login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[model.SurveyResult](t, rec)
	assert.Equal(t, start.SessionID, result.SessionID)
	require.NotNil(t, result.Document)

	rec = f.do(t, http.MethodGet, "/v1/results?limit=5", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/v1/results?limit=zero", login.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/v1/admin/sessions/"+start.SessionID, login.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodDelete, "/v1/admin/sessions/"+start.SessionID, login.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogAndCORS(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, http.MethodGet, "/v1/catalog", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, float64(12), body["totalQuestions"])
	assert.Len(t, body["questions"], 13)

	req := httptest.NewRequest(http.MethodOptions, "/v1/sessions", nil)
	req.Header.Set("Origin", "https://app.example")
	out := httptest.NewRecorder()
	f.handler.ServeHTTP(out, req)
	assert.Equal(t, http.StatusOK, out.Code)
	assert.Equal(t, "https://app.example", out.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/v1/sessions", nil)
	req.Header.Set("Origin", "https://evil.example")
	out = httptest.NewRecorder()
	f.handler.ServeHTTP(out, req)
	assert.Empty(t, out.Header().Get("Access-Control-Allow-Origin"))
}
