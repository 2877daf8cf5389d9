package handler

import (
	"cardclash/internal/service"
	"cardclash/internal/transport/rest/middleware"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RoomHandler handles room and queue endpoints
type RoomHandler struct {
	roomSvc  *service.RoomService
	queueSvc *service.QueueService
	logger   *zap.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomSvc *service.RoomService, queueSvc *service.QueueService, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{
		roomSvc:  roomSvc,
		queueSvc: queueSvc,
		logger:   logger,
	}
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// List handles GET /v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomSvc.ListRooms(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// Get handles GET /v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomSvc.GetRoom(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, room.Summary())
}

// Create handles POST /v1/admin/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.roomSvc.CreateRoom(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, room.Summary())
}

// Delete handles DELETE /v1/admin/rooms/{id}
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.roomSvc.DeleteRoom(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Info("room removed by admin", zap.String("adminId", middleware.GetAdminID(r.Context())), zap.String("roomId", id))
	w.WriteHeader(http.StatusNoContent)
}

// Queue handles GET /v1/queue
func (h *RoomHandler) Queue(w http.ResponseWriter, r *http.Request) {
	snap, err := h.queueSvc.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// StartMatching handles POST /v1/admin/matching/start
func (h *RoomHandler) StartMatching(w http.ResponseWriter, r *http.Request) {
	res, err := h.queueSvc.StartMatching(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Info("matching triggered",
		zap.String("adminId", middleware.GetAdminID(r.Context())),
		zap.Int("rooms", len(res.Rooms)),
	)
	summaries := make([]interface{}, 0, len(res.Rooms))
	for _, room := range res.Rooms {
		summaries = append(summaries, room.Summary())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": summaries})
}

// FinishMatching handles POST /v1/admin/matching/finish
func (h *RoomHandler) FinishMatching(w http.ResponseWriter, r *http.Request) {
	if err := h.queueSvc.FinishMatching(r.Context()); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
