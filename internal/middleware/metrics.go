package middleware

import (
	"net/http"
	"time"

	"showdown-vote/internal/metrics"

	"github.com/gorilla/mux"
)

const unmatchedRoute = "unmatched"

// Metrics records request counts and latency per route template, so ids in
// paths do not explode label cardinality. It wraps the router from outside so
// requests that match no route are counted too.
func Metrics(m *metrics.Metrics, router *mux.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			m.RecordHTTPRequest(r.Method, routeTemplate(router, r), rec.status, time.Since(start).Seconds())
		})
	}
}

func routeTemplate(router *mux.Router, r *http.Request) string {
	var match mux.RouteMatch
	if !router.Match(r, &match) || match.Route == nil {
		return unmatchedRoute
	}
	tmpl, err := match.Route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}
	return tmpl
}
