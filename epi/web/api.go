package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"

	"github.com/epihealth/epi-app/epi/constants"
	"github.com/epihealth/epi-app/epi/health"
	"github.com/epihealth/epi-app/epi/models"
	"github.com/epihealth/epi-app/epi/models/postgres"
	"github.com/epihealth/epi-app/epi/responseutils"
	"github.com/epihealth/epi-app/epi/service"
)

// API carries the service dependencies for the HTTP handlers.
type API struct {
	classifier service.Classifier
	insights   service.Insights
	cfg        *service.Config
	health     health.HealthChecker
}

func NewAPI(db *sql.DB) *API {
	repository := postgres.NewRepository(db)
	cfg := service.LoadConfig()
	return &API{
		classifier: service.NewClassifier(repository, cfg),
		insights:   service.NewInsights(repository, cfg),
		cfg:        cfg,
		health:     health.NewHealthChecker(db),
	}
}

/*
	swagger:route POST /api/v1/rules/classify-episode rules classifyEpisode

	Classify billing codes into an episode of care

	Scores the submitted diagnosis, procedure, NDC, and revenue codes against
	the active code mappings and returns the best-evidenced episode with a
	confidence score and reasoning.

	Produces:
	- application/json

	Responses:
		200: classificationResponse
		400: badRequestResponse
		500: errorResponse
*/
func (a *API) classifyEpisode(w http.ResponseWriter, r *http.Request) {
	var req models.ClassificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeClassifyError(w, r, service.InvalidRequestError{Err: err})
		return
	}

	clientID := req.Context.ClientID
	if clientID == "" {
		clientID = a.cfg.DefaultClientID
	}

	result, err := a.classifier.Classify(r.Context(), clientID, &req)
	if err != nil {
		a.writeClassifyError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

func (a *API) writeClassifyError(w http.ResponseWriter, r *http.Request, err error) {
	var invalidErr service.InvalidRequestError
	if errors.As(err, &invalidErr) {
		responseutils.WriteBadRequest(w, r, "Invalid request body")
		return
	}
	log.Error(err)
	responseutils.WriteError(w, r, http.StatusInternalServerError, "Failed to classify episode")
}

func (a *API) episodes(w http.ResponseWriter, r *http.Request) {
	definitions, err := a.insights.EpisodeDefinitions(r.Context(), a.clientID(r))
	if err != nil {
		log.Error(err)
		responseutils.WriteServerError(w, r)
		return
	}
	if definitions == nil {
		definitions = []*models.EpisodeDefinition{}
	}

	render.JSON(w, r, definitions)
}

func (a *API) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.insights.Summary(r.Context(), a.clientID(r))
	if err != nil {
		log.Error(err)
		responseutils.WriteServerError(w, r)
		return
	}

	render.JSON(w, r, summary)
}

func (a *API) dashboardForecast(w http.ResponseWriter, r *http.Request) {
	forecast, err := a.insights.Forecast(r.Context(), a.clientID(r))
	if err != nil {
		log.Error(err)
		responseutils.WriteServerError(w, r)
		return
	}
	if forecast == nil {
		forecast = []service.ForecastPoint{}
	}

	render.JSON(w, r, forecast)
}

func (a *API) dashboardSignals(w http.ResponseWriter, r *http.Request) {
	activity, err := a.insights.SignalActivity(r.Context(), a.clientID(r))
	if err != nil {
		log.Error(err)
		responseutils.WriteServerError(w, r)
		return
	}

	render.JSON(w, r, activity)
}

func (a *API) dashboardMembers(w http.ResponseWriter, r *http.Request) {
	members, err := a.insights.HighRiskMembers(r.Context(), a.clientID(r))
	if err != nil {
		log.Error(err)
		responseutils.WriteServerError(w, r)
		return
	}

	render.JSON(w, r, members)
}

func (a *API) dashboardCostProjection(w http.ResponseWriter, r *http.Request) {
	points, err := a.insights.CostProjection(r.Context(), a.clientID(r))
	if err != nil {
		log.Error(err)
		responseutils.WriteServerError(w, r)
		return
	}
	if points == nil {
		points = []service.CostProjectionPoint{}
	}

	render.JSON(w, r, points)
}

func (a *API) getVersion(w http.ResponseWriter, r *http.Request) {
	respMap := make(map[string]string)
	respMap["version"] = constants.Version
	render.JSON(w, r, respMap)
}

func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	m := make(map[string]string)

	result, ok := a.health.IsDatabaseOK()
	m["database"] = result
	if !ok {
		render.Status(r, http.StatusBadGateway)
	}

	render.JSON(w, r, m)
}

// clientID resolves the tenant for dashboard reads: the clientId query
// parameter when present, the configured default otherwise.
func (a *API) clientID(r *http.Request) string {
	if clientID := r.URL.Query().Get("clientId"); clientID != "" {
		return clientID
	}
	return a.cfg.DefaultClientID
}
