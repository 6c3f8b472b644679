package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/epihealth/epi-app/epi/logging"
	"github.com/epihealth/epi-app/epi/monitoring"
	"github.com/epihealth/epi-app/middleware"
)

func (a *API) NewAPIRouter() http.Handler {
	r := chi.NewRouter()
	m := monitoring.GetMonitor()
	r.Use(middleware.NewTransactionID, logging.NewStructuredLogger(), SecurityHeader, ConnectionClose)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post(m.WrapHandler("/rules/classify-episode", a.classifyEpisode))
		r.Get(m.WrapHandler("/episodes", a.episodes))
		r.Route("/dashboard", func(r chi.Router) {
			r.Get(m.WrapHandler("/summary", a.dashboardSummary))
			r.Get(m.WrapHandler("/forecast", a.dashboardForecast))
			r.Get(m.WrapHandler("/signals", a.dashboardSignals))
			r.Get(m.WrapHandler("/members", a.dashboardMembers))
			r.Get(m.WrapHandler("/cost-projection", a.dashboardCostProjection))
		})
	})
	r.Get(m.WrapHandler("/_version", a.getVersion))
	r.Get(m.WrapHandler("/_health", a.healthCheck))
	return r
}

// NewHTTPRouter redirects plain HTTP traffic to the TLS listener.
func NewHTTPRouter() http.Handler {
	r := chi.NewRouter()
	m := monitoring.GetMonitor()
	r.Use(ConnectionClose)
	r.With(logging.NewStructuredLogger()).Get(m.WrapHandler("/*", func(w http.ResponseWriter, req *http.Request) {
		url := "https://" + req.Host + req.URL.String()
		http.Redirect(w, req, url, http.StatusMovedPermanently)
	}))
	return r
}
