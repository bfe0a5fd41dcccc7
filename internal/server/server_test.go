package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alecf/careerprep/internal/cache"
	"github.com/alecf/careerprep/internal/coach"
	"github.com/alecf/careerprep/internal/generate"
	"github.com/alecf/careerprep/internal/llm"
	"github.com/alecf/careerprep/internal/llm/llmtest"
	"github.com/alecf/careerprep/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testAdminToken = "admin-secret"

func newTestServer(t *testing.T, provider llm.Provider) *Server {
	t.Helper()
	return newTestServerWith(t, provider, Options{AdminToken: testAdminToken})
}

func newTestServerWith(t *testing.T, provider llm.Provider, opts Options) *Server {
	t.Helper()

	st, err := store.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	orch := generate.New(cache.New(cache.Options{}), provider, generate.Options{Model: "test-model"})
	return New(coach.New(orch, st, zap.NewNop()), zap.NewNop(), opts)
}

func do(t *testing.T, s *Server, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(UserHeader, user)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func doAdmin(t *testing.T, s *Server, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createProfile(t *testing.T, s *Server, user string) {
	t.Helper()
	w := do(t, s, http.MethodPut, "/api/v1/profile", user, map[string]any{
		"name":       "Ada",
		"industry":   "Software Development",
		"experience": 3,
		"skills":     []string{"Go"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, llmtest.Text("unused"))
	w := do(t, s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMissingUserHeader(t *testing.T) {
	s := newTestServer(t, llmtest.Text("unused"))
	w := do(t, s, http.MethodGet, "/api/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownUser(t *testing.T) {
	s := newTestServer(t, llmtest.Text("unused"))
	w := do(t, s, http.MethodPost, "/api/v1/quiz", "ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileValidation(t *testing.T) {
	s := newTestServer(t, llmtest.Text("unused"))
	w := do(t, s, http.MethodPut, "/api/v1/profile", "u1", map[string]any{"experience": -2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuizCarriesSource(t *testing.T) {
	s := newTestServer(t, llmtest.Failing(errors.New("down")))
	createProfile(t, s, "u1")

	w := do(t, s, http.MethodPost, "/api/v1/quiz", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "fallback", body["source"])
	assert.Len(t, body["questions"], 10)
}

func TestCoverLetterLifecycle(t *testing.T) {
	s := newTestServer(t, llmtest.Text("Dear Acme,\n\nHire me."))
	createProfile(t, s, "u1")

	w := do(t, s, http.MethodPost, "/api/v1/cover-letters", "u1", map[string]any{"jobTitle": "Engineer"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/v1/cover-letters", "u1", map[string]any{
		"jobTitle":    "Engineer",
		"companyName": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "live", created["source"])
	id := created["id"].(string)

	w = do(t, s, http.MethodPut, "/api/v1/cover-letters/"+id, "u1", map[string]any{"content": "Edited"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Edited", decode(t, w)["content"])

	w = do(t, s, http.MethodGet, "/api/v1/cover-letters/"+id, "u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodDelete, "/api/v1/cover-letters/"+id, "u1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/cover-letters", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["coverLetters"])
}

func TestInsightsRequireIndustry(t *testing.T) {
	s := newTestServer(t, llmtest.Text("unused"))
	w := do(t, s, http.MethodPut, "/api/v1/profile", "u1", map[string]any{"name": "Ada"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/insights", "u1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRoadmapProgressBeforeRoadmap(t *testing.T) {
	s := newTestServer(t, llmtest.Text("unused"))
	createProfile(t, s, "u1")

	w := do(t, s, http.MethodPost, "/api/v1/roadmap/progress", "u1", map[string]any{"completedSkills": []string{"Go"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChallengesAndSubmit(t *testing.T) {
	s := newTestServer(t, llmtest.Failing(errors.New("down")))
	createProfile(t, s, "u1")

	w := do(t, s, http.MethodGet, "/api/v1/challenges?language=Go&difficulty=medium", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := decode(t, w)
	assert.Equal(t, "fallback", list["source"])
	assert.EqualValues(t, 2, list["total"])

	id := list["challenges"].([]any)[0].(map[string]any)["id"].(string)
	w = do(t, s, http.MethodPost, "/api/v1/challenges/"+id+"/submit", "u1", map[string]any{
		"code":        "func search() {}",
		"testResults": []map[string]any{{"input": "x", "passed": true}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["allPassed"])

	w = do(t, s, http.MethodGet, "/api/v1/challenges/progress", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	progress := decode(t, w)
	assert.EqualValues(t, 1, progress["solved"])
	assert.EqualValues(t, 1, progress["totalSubmissions"])

	w = do(t, s, http.MethodGet, "/api/v1/challenges?difficulty=extreme", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResumeUpload(t *testing.T) {
	s := newTestServer(t, llmtest.Text("unused"))
	createProfile(t, s, "u1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("resume", "resume.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Ten years of Go."))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profile/resume", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(UserHeader, "u1")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, len("Ten years of Go."), decode(t, w)["resumeLength"])
}

func TestQuestionBank(t *testing.T) {
	s := newTestServer(t, llmtest.Text("unused"))

	w := do(t, s, http.MethodGet, "/api/v1/question-bank?company=Google&limit=3", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["total"])

	w = do(t, s, http.MethodGet, "/api/v1/question-bank?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuestionBankFavoritesAndProgress(t *testing.T) {
	s := newTestServer(t, llmtest.Text("unused"))

	w := do(t, s, http.MethodPost, "/api/v1/question-bank/q01/favorite", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	createProfile(t, s, "u1")

	w = do(t, s, http.MethodPost, "/api/v1/question-bank/q01/favorite", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["favorited"])

	w = do(t, s, http.MethodPost, "/api/v1/question-bank/missing/favorite", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/question-bank/favorites", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = do(t, s, http.MethodPost, "/api/v1/question-bank/q01/progress", "u1", map[string]any{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/v1/question-bank/q01/progress", "u1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/v1/question-bank/q01/progress", "u1", map[string]any{"status": "mastered"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode(t, w)["attempts"])

	w = do(t, s, http.MethodGet, "/api/v1/question-bank/progress", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["total"])
	assert.EqualValues(t, 1, stats["mastered"])
	assert.EqualValues(t, 1, stats["favorites"])

	// The public listing is unaffected by the user routes
	w = do(t, s, http.MethodGet, "/api/v1/question-bank?limit=2", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminCache(t *testing.T) {
	s := newTestServer(t, llmtest.Text("Dear Acme"))
	createProfile(t, s, "u1")

	w := do(t, s, http.MethodPost, "/api/v1/cover-letters", "u1", map[string]any{
		"jobTitle":    "Engineer",
		"companyName": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doAdmin(t, s, http.MethodGet, "/api/v1/admin/cache", testAdminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = doAdmin(t, s, http.MethodDelete, "/api/v1/admin/cache", testAdminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["cleared"])
}

func TestAdminCacheRequiresToken(t *testing.T) {
	s := newTestServer(t, llmtest.Text("unused"))

	assert.Equal(t, http.StatusUnauthorized, doAdmin(t, s, http.MethodDelete, "/api/v1/admin/cache", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doAdmin(t, s, http.MethodDelete, "/api/v1/admin/cache", "wrong").Code)

	w := do(t, s, http.MethodDelete, "/api/v1/admin/cache", "u1", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "a user identity is not an admin credential")
}

func TestAdminCacheDisabledWithoutToken(t *testing.T) {
	s := newTestServerWith(t, llmtest.Text("unused"), Options{})

	assert.Equal(t, http.StatusNotFound, doAdmin(t, s, http.MethodGet, "/api/v1/admin/cache", "anything").Code)
}
