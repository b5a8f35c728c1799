package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/swaggo/swag"

	_ "github.com/custodia-labs/unleashed-sync/internal/adapters/driving/http/docs"
	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// TriggerSyncRequest narrows an on-demand run
// @Description On-demand sync options
type TriggerSyncRequest struct {
	Resources []string `json:"resources,omitempty" example:"invoices"`
	DryRun    bool     `json:"dry_run,omitempty"`
}

// CheckResponse is the outcome of a connectivity check
// @Description Connectivity check result
type CheckResponse struct {
	DatabaseVersion string `json:"database_version"`
	APIReachable    bool   `json:"api_reachable"`
	LockBackend     string `json:"lock_backend"`
	Error           string `json:"error,omitempty"`
}

const defaultRunsLimit = 20

// Health endpoints are served at the root, outside the documented /api/v1
// base path.

// handleHealth reports that the process is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady answers 503 until the database responds to a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "api documentation unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, doc)
}

// Sync endpoints

// handleStatus godoc
// @Summary      Scheduler status
// @Description  Reports whether a run is active, the last outcome and the next scheduled run
// @Tags         Sync
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.SchedulerStatus
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /status [get]
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scheduler.Status())
}

// handleListRuns godoc
// @Summary      List runs
// @Description  Lists recorded runs, newest first. Requires RUN_HISTORY.
// @Tags         Sync
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of runs"  default(20)
// @Success      200    {array}   domain.SyncRun
// @Failure      400    {object}  ErrorResponse  "Invalid limit"
// @Failure      401    {object}  ErrorResponse  "Unauthorized"
// @Failure      404    {object}  ErrorResponse  "Run history disabled"
// @Failure      500    {object}  ErrorResponse  "Internal server error"
// @Router       /runs [get]
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.syncService.History(r.Context(), limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run history is disabled")
			return
		}
		s.logger.Error().Err(err).Msg("list runs")
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []*domain.SyncRun{}
	}

	writeJSON(w, http.StatusOK, runs)
}

// handleTriggerSync godoc
// @Summary      Trigger a sync
// @Description  Starts a run in the background. The body is optional.
// @Tags         Sync
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      TriggerSyncRequest  false  "Run options"
// @Success      202      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body or resource"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      409      {object}  ErrorResponse  "A run is already active"
// @Failure      503      {object}  ErrorResponse  "Scheduler stopped"
// @Router       /sync [post]
func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	var req TriggerSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := driving.SyncOptions{DryRun: req.DryRun}
	for _, name := range req.Resources {
		res, err := domain.ParseResource(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.Resources = append(opts.Resources, res)
	}

	if err := s.scheduler.Trigger(r.Context(), opts); err != nil {
		if errors.Is(err, domain.ErrSyncInProgress) {
			writeError(w, http.StatusConflict, "sync already in progress")
			return
		}
		if errors.Is(err, domain.ErrSchedulerStopped) {
			writeError(w, http.StatusServiceUnavailable, "scheduler stopped")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to start sync")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleCheck godoc
// @Summary      Connectivity check
// @Description  Queries the database version, pings the API and the lock backend
// @Tags         Sync
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  CheckResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      503  {object}  CheckResponse  "A dependency is unreachable"
// @Router       /check [post]
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	report, err := s.syncService.Check(r.Context())

	var resp CheckResponse
	if report != nil {
		resp = CheckResponse{
			DatabaseVersion: report.DatabaseVersion,
			APIReachable:    report.APIReachable,
			LockBackend:     report.LockBackend,
		}
	}
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
