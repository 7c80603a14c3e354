package stream

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpsyche/advisor/backend/internal/advice"
	"github.com/finpsyche/advisor/backend/internal/analysis/casual"
	"github.com/finpsyche/advisor/backend/internal/analysis/emotion"
	"github.com/finpsyche/advisor/backend/internal/analysis/personality"
	"github.com/finpsyche/advisor/backend/internal/analysis/rules"
	"github.com/finpsyche/advisor/backend/internal/analysis/sentiment"
	"github.com/finpsyche/advisor/backend/internal/service/advisor"
	chatservice "github.com/finpsyche/advisor/backend/internal/service/chat"
)

type neutralAnalyzer struct{}

func (neutralAnalyzer) Score(string) sentiment.Scores { return sentiment.Scores{} }

func setupRouter(t *testing.T, analyzer sentiment.Analyzer) *chi.Mux {
	t.Helper()
	set := rules.Default()
	svc, err := advisor.NewService(advisor.Dependencies{
		Casual:      casual.NewDetector(set.Casual),
		Emotion:     emotion.NewClassifier(analyzer, set.Emotion),
		Personality: personality.NewClassifier(set.Personality, nil),
		Composer:    advice.NewComposer(set.Topics),
		History:     chatservice.NewMemoryStore(),
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	return r
}

func TestStreamEmitsEventsInOrder(t *testing.T) {
	r := setupRouter(t, nil)

	target := "/stream/s1?message=" + url.QueryEscape("Should I invest in stocks?")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))

	body := resp.Body.String()
	order := []string{"event: start", "event: analysis", "event: message", "event: end"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(body, marker)
		require.NotEqual(t, -1, idx, marker)
		assert.Greater(t, idx, last, marker)
		last = idx
	}
	assert.Contains(t, body, `"source":"composer"`)
	assert.NotContains(t, body, "financial_advice")
}

func TestStreamRequiresMessage(t *testing.T) {
	resp := httptest.NewRecorder()
	setupRouter(t, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/s1", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStreamAnalysisKeepsZeroScore(t *testing.T) {
	r := setupRouter(t, neutralAnalyzer{})

	target := "/stream/s1?message=" + url.QueryEscape("How should I split my salary between savings and investments?")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"emotionScore":0`)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/s2?message=thanks", nil))
	assert.NotContains(t, resp.Body.String(), "emotionScore")
}
