package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stridewell/server/pkg/bootstrap"
	"github.com/stridewell/server/pkg/domain/wellness"
	httputil "github.com/stridewell/server/pkg/infrastructure/http"
	"github.com/stridewell/server/pkg/syncservice"
	"github.com/stridewell/server/pkg/types"
)

type syncRequest struct {
	AthleteID    string   `json:"athlete_id"`
	DataTypes    []string `json:"data_types,omitempty"`
	DryRun       bool     `json:"dry_run,omitempty"`
	ForceRefresh bool     `json:"force_refresh,omitempty"`
}

func newRouter(svc *bootstrap.Service) http.Handler {
	contexts := wellness.NewContextBuilder(svc.Store, svc.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/scheduler/status", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, svc.Scheduler.Status())
	})

	r.Post("/scheduler/trigger", func(w http.ResponseWriter, req *http.Request) {
		svc.Scheduler.TriggerCheck(req.Context())
		httputil.WriteJSON(w, http.StatusAccepted, svc.Scheduler.Status())
	})

	r.Post("/sync", func(w http.ResponseWriter, req *http.Request) {
		var body syncRequest
		if err := httputil.DecodeJSON(req, &body); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if body.AthleteID == "" {
			httputil.WriteError(w, http.StatusBadRequest, "athlete_id is required")
			return
		}

		active, err := svc.Store.GetRunningSyncRun(req.Context(), body.AthleteID)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if active != nil {
			httputil.WriteError(w, http.StatusConflict, "sync already running: "+active.SyncID)
			return
		}

		run, err := svc.Sync.SyncAthleteData(req.Context(), syncservice.RunOptions{
			AthleteID:    body.AthleteID,
			SyncType:     types.SyncTypeManual,
			DataTypes:    body.DataTypes,
			DryRun:       body.DryRun,
			ForceRefresh: body.ForceRefresh,
		})
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httputil.WriteJSON(w, http.StatusOK, run)
	})

	r.Get("/athletes/{athleteID}/sessions", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		sessions, err := svc.Store.ListSessions(req.Context(),
			chi.URLParam(req, "athleteID"), q.Get("start"), q.Get("end"), intParam(q.Get("limit")))
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httputil.WriteJSON(w, http.StatusOK, sessions)
	})

	r.Get("/athletes/{athleteID}/wellness-context", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		date := q.Get("date")
		if date == "" {
			httputil.WriteError(w, http.StatusBadRequest, "date is required (YYYY-MM-DD)")
			return
		}

		wc, err := contexts.Build(req.Context(), chi.URLParam(req, "athleteID"), date, intParam(q.Get("lookback_days")))
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httputil.WriteJSON(w, http.StatusOK, wc)
	})

	return r
}

func intParam(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
