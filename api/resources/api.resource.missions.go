// FilePath: api/resources/api.resource.missions.go
package resources

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/agrirobotics/datalake/api/middleware"
	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/ingestservice"
	"github.com/agrirobotics/datalake/internal/models"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// MissionHandlers encapsulates the mission-related HTTP handlers
type MissionHandlers struct {
	svc *ingestservice.IngestService
}

type messageResponse struct {
	Message string `json:"message"`
}

// @Summary Create a new mission summary
// @Description Record one completed robot mission for the authenticated user
// @Tags missions
// @Accept json
// @Produce json
// @Param mission body models.Mission true "Mission details"
// @Success 201 {object} models.Mission
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Router /missions [post]
// @Security BearerAuth
func (h *MissionHandlers) CreateMission(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no user context found", nil).WithRequestID(requestID))
		return
	}

	var mission models.Mission
	if err := json.NewDecoder(r.Body).Decode(&mission); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	created, err := h.svc.CreateMission(r.Context(), &mission, user.ID)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// @Summary List missions
// @Description Get a paginated list of missions, newest start_time first
// @Tags missions
// @Produce json
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {array} models.Mission
// @Router /missions [get]
// @Security BearerAuth
func (h *MissionHandlers) ListMissions(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	offset, limit := getPaginationParams(r)

	missions, err := h.svc.ListMissions(r.Context(), offset, limit)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, missions)
}

// @Summary Get a mission by ID
// @Tags missions
// @Produce json
// @Param id path int true "Mission ID"
// @Success 200 {object} models.Mission
// @Failure 404 {object} errors.APIError
// @Router /missions/{id} [get]
// @Security BearerAuth
func (h *MissionHandlers) GetMission(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	missionID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid mission id", err).WithRequestID(requestID))
		return
	}

	mission, err := h.svc.GetMission(r.Context(), missionID)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, mission)
}

// @Summary Add a batch of robot state samples
// @Description Bulk-insert timestamped telemetry for a mission; the batch commits atomically
// @Tags missions
// @Accept json
// @Produce json
// @Param id path int true "Mission ID"
// @Param states body []models.RobotState true "Robot state batch"
// @Success 200 {object} messageResponse
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /missions/{id}/robot_state [post]
// @Security BearerAuth
func (h *MissionHandlers) AddRobotStates(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	missionID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid mission id", err).WithRequestID(requestID))
		return
	}

	var states []models.RobotState
	if err := json.NewDecoder(r.Body).Decode(&states); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	count, err := h.svc.AddRobotStates(r.Context(), missionID, states)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("%d robot states added to mission %d", count, missionID),
	})
}

// @Summary Get robot state samples for a mission
// @Tags missions
// @Produce json
// @Param id path int true "Mission ID"
// @Success 200 {array} models.RobotState
// @Router /missions/{id}/robot_state [get]
// @Security BearerAuth
func (h *MissionHandlers) GetRobotStates(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	missionID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid mission id", err).WithRequestID(requestID))
		return
	}

	states, err := h.svc.GetRobotStates(r.Context(), missionID)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, states)
}

// @Summary Get the latest robot state sample for a mission
// @Tags missions
// @Produce json
// @Param id path int true "Mission ID"
// @Success 200 {object} models.RobotState
// @Failure 404 {object} errors.APIError
// @Router /missions/{id}/robot_state/latest [get]
// @Security BearerAuth
func (h *MissionHandlers) GetLatestRobotState(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	missionID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid mission id", err).WithRequestID(requestID))
		return
	}

	state, err := h.svc.GetLatestRobotState(r.Context(), missionID)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, state)
}

// @Summary Add a batch of agri events
// @Tags missions
// @Accept json
// @Produce json
// @Param id path int true "Mission ID"
// @Param events body []models.AgriEvent true "Agri event batch"
// @Success 200 {object} messageResponse
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /missions/{id}/agri_events [post]
// @Security BearerAuth
func (h *MissionHandlers) AddAgriEvents(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	missionID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid mission id", err).WithRequestID(requestID))
		return
	}

	var events []models.AgriEvent
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	count, err := h.svc.AddAgriEvents(r.Context(), missionID, events)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("%d agri-events added to mission %d", count, missionID),
	})
}

// @Summary Get agri events for a mission
// @Tags missions
// @Produce json
// @Param id path int true "Mission ID"
// @Success 200 {array} models.AgriEvent
// @Router /missions/{id}/agri_events [get]
// @Security BearerAuth
func (h *MissionHandlers) GetAgriEvents(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	missionID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid mission id", err).WithRequestID(requestID))
		return
	}

	events, err := h.svc.GetAgriEvents(r.Context(), missionID)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, events)
}

// Helper functions

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func getPaginationParams(r *http.Request) (offset, limit int) {
	query := r.URL.Query()
	offset, _ = strconv.Atoi(query.Get("offset"))
	limit, _ = strconv.Atoi(query.Get("limit"))

	if limit <= 0 || limit > 200 {
		limit = 50 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	return offset, limit
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

// respondWithServiceError passes typed service errors through with
// their own codes and wraps anything else as internal.
func respondWithServiceError(w http.ResponseWriter, err error, requestID string) {
	if apiErr, ok := err.(*errors.APIError); ok {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError("request failed", err).WithRequestID(requestID))
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
