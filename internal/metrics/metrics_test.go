package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	return w.Body.String()
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/v1/games/{gameID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/games/"+id, nil))
	}

	body := scrape(t)
	if !strings.Contains(body, `ceosim_http_requests_total{method="GET",path="/api/v1/games/{gameID}",status="418"} 3`) {
		t.Error("requests not aggregated under the route pattern")
	}
	if strings.Contains(body, `path="/api/v1/games/a"`) {
		t.Error("raw path leaked into labels")
	}
}

func TestHandlerExposesGameMetrics(t *testing.T) {
	DecisionsTotal.WithLabelValues("safe", "success").Inc()
	GamesStarted.WithLabelValues("story").Inc()

	body := scrape(t)
	for _, want := range []string{
		`ceosim_decisions_total{outcome="success",type="safe"}`,
		`ceosim_games_started_total{mode="story"}`,
		`ceosim_active_games`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("%s missing from exposition", want)
		}
	}
}
