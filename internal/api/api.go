// Package api serves indicators over a JSON HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/vcollos/dashboard-rn518/internal/buildinfo"
	"github.com/vcollos/dashboard-rn518/internal/classify"
	"github.com/vcollos/dashboard-rn518/internal/consolidate"
	"github.com/vcollos/dashboard-rn518/internal/indicators"
	"github.com/vcollos/dashboard-rn518/internal/logging"
	"github.com/vcollos/dashboard-rn518/internal/model"
	"github.com/vcollos/dashboard-rn518/internal/period"
)

// PeriodProvider returns a (possibly cached) period result.
type PeriodProvider interface {
	Period(ctx context.Context, p model.Period) (indicators.PeriodResult, error)
}

// Server holds the API dependencies.
type Server struct {
	svc        *indicators.Service
	periods    PeriodProvider
	classifier *classify.Classifier
	targets    consolidate.Targets
	log        *slog.Logger
}

// Options configures a Server.
type Options struct {
	// Periods defaults to computing every request through the service.
	Periods    PeriodProvider
	Classifier *classify.Classifier
	Targets    consolidate.Targets
	Logger     *slog.Logger
}

// New creates a Server.
func New(svc *indicators.Service, opts Options) *Server {
	s := &Server{
		svc:        svc,
		periods:    opts.Periods,
		classifier: opts.Classifier,
		targets:    opts.Targets,
		log:        opts.Logger,
	}
	if s.periods == nil {
		s.periods = direct{svc}
	}
	if s.classifier == nil {
		s.classifier = classify.Default()
	}
	if s.targets == nil {
		s.targets = consolidate.DefaultTargets()
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

type direct struct{ svc *indicators.Service }

func (d direct) Period(ctx context.Context, p model.Period) (indicators.PeriodResult, error) {
	return d.svc.CalculatePeriod(ctx, p)
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/healthz", s.healthHandler)
	router.GET("/api/v1/operators", s.operatorsHandler)
	router.GET("/api/v1/metadata", s.metadataHandler)
	router.GET("/api/v1/classify", s.classifyHandler)
	router.GET("/api/v1/indicators/:operator/:period", s.indicatorsHandler)
	router.GET("/api/v1/periods/:period", s.periodHandler)
	router.GET("/api/v1/periods/:period/average", s.averageHandler)
	router.GET("/api/v1/periods/:period/ranking/:indicator", s.rankingHandler)
	router.GET("/api/v1/history/:operator", s.historyHandler)
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, http.StatusNotFound, "not found")
	})
	return NewRequestLoggingMiddleware(s.log)(router)
}

type errorBody struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.LogError(s.log, "encoding response failed", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, text string) {
	s.sendJSON(w, status, errorBody{Code: status, Text: text})
}

func (s *Server) noDataResponse(w http.ResponseWriter) {
	s.errorResponse(w, http.StatusNotFound, "no data")
}

func (s *Server) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	logging.LogError(s.log, "request failed", err, slog.String("path", r.URL.Path))
	s.errorResponse(w, http.StatusInternalServerError, "internal server error")
}

func (s *Server) parsePeriod(w http.ResponseWriter, ps httprouter.Params) (model.Period, bool) {
	p, err := period.Parse(strings.TrimSuffix(ps.ByName("period"), ".json"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return model.Period{}, false
	}
	return p, true
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.sendJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

type operatorView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LegalName    string `json:"legal_name"`
	Municipality string `json:"municipality"`
	State        string `json:"state"`
}

func (s *Server) operatorsHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ops, err := s.svc.Source().ActiveOperators(r.Context())
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}
	out := make([]operatorView, len(ops))
	for i, op := range ops {
		out[i] = operatorView{
			ID:           op.ID,
			Name:         op.DisplayName(),
			LegalName:    op.LegalName,
			Municipality: op.Municipality,
			State:        op.State,
		}
	}
	s.sendJSON(w, http.StatusOK, out)
}

func (s *Server) metadataHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	meta, ok, err := s.svc.Source().Metadata(r.Context())
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}
	if !ok {
		s.noDataResponse(w)
		return
	}
	s.sendJSON(w, http.StatusOK, struct {
		model.Metadata
		LatestPeriod string `json:"latest_period"`
	}{meta, meta.LatestPeriod.String()})
}

func (s *Server) classifyHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	desc := r.URL.Query().Get("description")
	if desc == "" {
		s.errorResponse(w, http.StatusBadRequest, "missing description")
		return
	}
	s.sendJSON(w, http.StatusOK, s.classifier.Explain(desc))
}

type indicatorsView struct {
	model.IndicatorRecord
	Period  string                   `json:"period"`
	Targets []consolidate.Assessment `json:"targets"`
}

func (s *Server) indicatorsHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := s.parsePeriod(w, ps)
	if !ok {
		return
	}
	rec, ok, err := s.svc.CalculateIndicators(r.Context(), ps.ByName("operator"), p)
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}
	if !ok {
		s.noDataResponse(w)
		return
	}
	s.sendJSON(w, http.StatusOK, indicatorsView{
		IndicatorRecord: rec,
		Period:          p.String(),
		Targets:         consolidate.Evaluate(rec.Ratios, s.targets),
	})
}

type periodView struct {
	RunID    string                  `json:"run_id"`
	Period   string                  `json:"period"`
	Included int                     `json:"included"`
	Excluded int                     `json:"excluded"`
	Failed   int                     `json:"failed"`
	Records  []model.IndicatorRecord `json:"records"`
}

func (s *Server) periodHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := s.parsePeriod(w, ps)
	if !ok {
		return
	}
	res, err := s.periods.Period(r.Context(), p)
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}
	records := res.Records
	if records == nil {
		records = []model.IndicatorRecord{}
	}
	s.sendJSON(w, http.StatusOK, periodView{
		RunID:    res.RunID,
		Period:   p.String(),
		Included: res.Included,
		Excluded: res.Excluded,
		Failed:   res.Failed,
		Records:  records,
	})
}

func (s *Server) averageHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := s.parsePeriod(w, ps)
	if !ok {
		return
	}
	res, err := s.periods.Period(r.Context(), p)
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}
	avg, ok := consolidate.Average(res.Records)
	if !ok {
		s.noDataResponse(w)
		return
	}
	s.sendJSON(w, http.StatusOK, struct {
		model.ConsolidatedRecord
		Period  string                   `json:"period"`
		Targets []consolidate.Assessment `json:"targets"`
	}{avg, p.String(), consolidate.Evaluate(avg.Ratios, s.targets)})
}

func (s *Server) rankingHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := s.parsePeriod(w, ps)
	if !ok {
		return
	}
	ind, err := model.ParseIndicator(strings.ToLower(ps.ByName("indicator")))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.periods.Period(r.Context(), p)
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}
	if len(res.Records) == 0 {
		s.noDataResponse(w)
		return
	}
	s.sendJSON(w, http.StatusOK, consolidate.Rank(res.Records, ind))
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	history, err := s.svc.BuildHistory(r.Context(), ps.ByName("operator"))
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}
	if len(history) == 0 {
		s.noDataResponse(w)
		return
	}
	s.sendJSON(w, http.StatusOK, struct {
		Records []model.IndicatorRecord `json:"records"`
		Trends  []consolidate.Trend     `json:"trends"`
	}{history, consolidate.Trends(history)})
}
