package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/trungvm/goalflow-backend/internal/domain"
	"github.com/trungvm/goalflow-backend/internal/usecase/datemath"
	"github.com/trungvm/goalflow-backend/internal/usecase/goals"
	"github.com/trungvm/goalflow-backend/internal/usecase/projection"
	"github.com/trungvm/goalflow-backend/internal/usecase/series"
)

// handleListGoals handles GET /api/goals
func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	list, err := s.goalService.ListGoals(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]goalResponse, 0, len(list))
	for _, goal := range list {
		resp = append(resp, goalToResponse(goal))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetGoal handles GET /api/goals/{goalID}
func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := s.parseUUIDParam(w, r, "goalID")
	if !ok {
		return
	}

	goal, err := s.goalService.GetGoal(r.Context(), goalID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, goalToResponse(goal))
}

// handleCreateGoal handles POST /api/goals
func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGoalRequest(w, r)
	if !ok {
		return
	}

	goal, err := req.toDomain()
	if err != nil {
		s.writeBadRequest(w, err)
		return
	}

	created, err := s.goalService.CreateGoal(r.Context(), goal)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, goalToResponse(created))
}

// handleUpdateGoal handles PUT /api/goals/{goalID}
func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := s.parseUUIDParam(w, r, "goalID")
	if !ok {
		return
	}

	req, ok := s.decodeGoalRequest(w, r)
	if !ok {
		return
	}

	goal, err := req.toDomain()
	if err != nil {
		s.writeBadRequest(w, err)
		return
	}
	goal.ID = goalID

	updated, err := s.goalService.UpdateGoal(r.Context(), goal)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, goalToResponse(updated))
}

// handleDeleteGoal handles DELETE /api/goals/{goalID}
func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := s.parseUUIDParam(w, r, "goalID")
	if !ok {
		return
	}

	if err := s.goalService.DeleteGoal(r.Context(), goalID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetProgress handles GET /api/goals/{goalID}/progress
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	goalID, ok := s.parseUUIDParam(w, r, "goalID")
	if !ok {
		return
	}

	asOf, ok := s.parseDateQuery(w, r, "date")
	if !ok {
		return
	}

	snapshot, err := s.progressService.GetGoalProgress(r.Context(), goalID, asOf)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, progressToResponse(snapshot))
}

// handleListProgress handles GET /api/goals/progress
func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	asOf, ok := s.parseDateQuery(w, r, "date")
	if !ok {
		return
	}

	snapshots, err := s.progressService.ListGoalProgress(r.Context(), asOf)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]progressResponse, 0, len(snapshots))
	for _, snapshot := range snapshots {
		resp = append(resp, progressToResponse(snapshot))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetHistory handles GET /api/goals/{goalID}/history?granularity=
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	goalID, ok := s.parseUUIDParam(w, r, "goalID")
	if !ok {
		return
	}

	granularity, err := series.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		s.writeBadRequest(w, err)
		return
	}

	today, ok := s.parseDateQuery(w, r, "date")
	if !ok {
		return
	}

	points, err := s.seriesService.BuildGoalSeries(r.Context(), goalID, granularity, today)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]chartPointResponse, 0, len(points))
	for _, point := range points {
		resp = append(resp, chartPointToResponse(point))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetAllocations handles GET /api/goals/{goalID}/allocations?date=
func (s *Server) handleGetAllocations(w http.ResponseWriter, r *http.Request) {
	goalID, ok := s.parseUUIDParam(w, r, "goalID")
	if !ok {
		return
	}

	date, ok := s.parseDateQuery(w, r, "date")
	if !ok {
		return
	}

	allocations, err := s.goalService.GetGoalAllocationsOnDate(r.Context(), goalID, date)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]allocationResponse, 0, len(allocations))
	for _, alloc := range allocations {
		resp = append(resp, allocationToResponse(alloc))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleUpsertAllocations handles POST /api/allocations
func (s *Server) handleUpsertAllocations(w http.ResponseWriter, r *http.Request) {
	var reqs []allocationRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		s.writeBadRequest(w, err)
		return
	}

	allocations := make([]*domain.GoalAllocation, 0, len(reqs))
	for i := range reqs {
		alloc, err := reqs[i].toDomain()
		if err != nil {
			s.writeBadRequest(w, err)
			return
		}
		allocations = append(allocations, alloc)
	}

	if err := s.goalService.UpsertAllocations(r.Context(), allocations); err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]allocationResponse, 0, len(allocations))
	for _, alloc := range allocations {
		resp = append(resp, allocationToResponse(alloc))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleValidateAllocation handles POST /api/allocations/validate. It runs
// the conflict check without persisting anything, reporting the outcome with
// a 200 either way so callers can preview an allocation before saving it.
func (s *Server) handleValidateAllocation(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, err)
		return
	}

	alloc, err := req.toDomain()
	if err != nil {
		s.writeBadRequest(w, err)
		return
	}

	err = s.goalService.ValidateAllocationConflicts(r.Context(), alloc)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"valid":   true,
			"message": "no allocation conflicts",
		})
	case errors.Is(err, goals.ErrAllocationConflict):
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"valid":   false,
			"message": err.Error(),
		})
	default:
		s.writeError(w, err)
	}
}

// handleUnallocatedBalance handles GET /api/accounts/{accountID}/unallocated?date=
func (s *Server) handleUnallocatedBalance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.parseUUIDParam(w, r, "accountID")
	if !ok {
		return
	}

	date, ok := s.parseDateQuery(w, r, "date")
	if !ok {
		return
	}

	balance, err := s.goalService.UnallocatedBalance(r.Context(), accountID, date)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"accountId":   accountID.String(),
		"date":        datemath.Format(datemath.DateOnly(date)),
		"unallocated": balance.String(),
	})
}

// handleLatestValuations handles GET /api/accounts/valuations?ids=a,b,c
func (s *Server) handleLatestValuations(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		s.writeBadRequest(w, errors.New("ids query parameter is required"))
		return
	}

	ids := make([]uuid.UUID, 0)
	for _, part := range strings.Split(raw, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			s.writeBadRequest(w, errors.New("invalid account id format"))
			return
		}
		ids = append(ids, id)
	}

	valuations, err := s.goalService.LatestAccountValuations(r.Context(), ids)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]valuationResponse, 0, len(valuations))
	for _, v := range valuations {
		resp = append(resp, valuationToResponse(v))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// parseUUIDParam parses a UUID path parameter, writing a 400 on failure
func (s *Server) parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		s.writeBadRequest(w, errors.New("invalid "+name+" format"))
		return uuid.Nil, false
	}
	return id, true
}

// parseDateQuery parses an optional YYYY-MM-DD query parameter, defaulting
// to today's calendar date
func (s *Server) parseDateQuery(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return datemath.DateOnly(time.Now()), true
	}

	date, err := datemath.ParseDate(value)
	if err != nil {
		s.writeBadRequest(w, err)
		return time.Time{}, false
	}
	return date, true
}

func (s *Server) decodeGoalRequest(w http.ResponseWriter, r *http.Request) (*goalRequest, bool) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, err)
		return nil, false
	}
	return &req, true
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeBadRequest(w http.ResponseWriter, err error) {
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// writeError maps domain and usecase errors to HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	switch {
	case errors.Is(err, goals.ErrAllocationConflict):
		status = http.StatusConflict
	case errors.Is(err, projection.ErrInvalidRange), errors.Is(err, series.ErrGoalNotScheduled):
		status = http.StatusBadRequest
	case strings.Contains(msg, "not found"):
		status = http.StatusNotFound
	case strings.Contains(msg, "must be"),
		strings.Contains(msg, "cannot be"),
		strings.Contains(msg, "invalid"),
		strings.Contains(msg, "must reference"):
		status = http.StatusBadRequest
	}

	s.writeJSON(w, status, map[string]string{"error": msg})
}
