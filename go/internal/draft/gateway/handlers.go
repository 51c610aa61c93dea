package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/draft/room"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/mcdev12/bestball/go/internal/playerpool"
	"github.com/rs/zerolog/log"
)

// Handler exposes the draft room REST and WebSocket surface.
type Handler struct {
	registry *room.Registry
	provider *StateProvider
	pool     *playerpool.Pool
	cm       *ConnectionManager

	// onRoomStarted lets the wiring layer attach the orchestrator watch
	// when a room is started. May be nil in tests.
	onRoomStarted func(st *room.Store)
}

// NewHandler creates the gateway handler.
func NewHandler(registry *room.Registry, provider *StateProvider, pool *playerpool.Pool, cm *ConnectionManager, onRoomStarted func(*room.Store)) *Handler {
	return &Handler{
		registry:      registry,
		provider:      provider,
		pool:          pool,
		cm:            cm,
		onRoomStarted: onRoomStarted,
	}
}

// Routes mounts all gateway routes on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/rooms", func(r chi.Router) {
		r.Post("/", h.createRoom)
		r.Route("/{roomID}", func(r chi.Router) {
			r.Get("/state", h.roomState)
			r.Get("/picks", h.pickHistory)
			r.Post("/picks", h.submitPick)
			r.Get("/queue/{participantID}", h.getQueue)
			r.Put("/queue/{participantID}", h.setQueue)
			r.Post("/start", h.startRoom)
			r.Post("/pause", h.pauseRoom)
			r.Post("/resume", h.resumeRoom)
			r.Post("/clear", h.clearPicks)
		})
	})
	r.Get("/ws/rooms/{roomID}", h.wsConnect)
	r.Get("/ws/stats", h.wsStats)
	return r
}

type createRoomRequest struct {
	Settings     models.DraftSettings `json:"settings"`
	Participants []models.Participant `json:"participants"`
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Participants) == 0 {
		writeError(w, http.StatusBadRequest, "participants are required")
		return
	}
	if req.Settings.PickTimerSec <= 0 || req.Settings.TotalRounds <= 0 {
		writeError(w, http.StatusBadRequest, "pick_timer_sec and total_rounds must be positive")
		return
	}

	rm := models.Room{
		ID:           uuid.New(),
		Status:       models.RoomStatusWaiting,
		Settings:     req.Settings,
		Participants: req.Participants,
		CreatedAt:    time.Now(),
	}
	st, err := h.registry.Create(rm)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, h.provider.RoomState(st))
}

func (h *Handler) roomState(w http.ResponseWriter, r *http.Request) {
	st, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.provider.RoomState(st))
}

func (h *Handler) pickHistory(w http.ResponseWriter, r *http.Request) {
	st, ok := h.store(w, r)
	if !ok {
		return
	}
	cursor, _ := strconv.Atoi(r.URL.Query().Get("cursor"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, h.provider.PickHistory(st, cursor, limit))
}

type submitPickRequest struct {
	PickNumber    int       `json:"pick_number"`
	PlayerID      uuid.UUID `json:"player_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
}

func (h *Handler) submitPick(w http.ResponseWriter, r *http.Request) {
	st, ok := h.store(w, r)
	if !ok {
		return
	}
	var req submitPickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	player, known := h.pool.ByID(req.PlayerID)
	if !known {
		writeError(w, http.StatusBadRequest, "unknown player")
		return
	}

	pick, _, err := st.SubmitPick(room.ProposedPick{
		PickNumber: req.PickNumber,
		PlayerID:   player.ID,
		PlayerName: player.FullName,
		Position:   player.Position,
		PickedBy:   req.ParticipantID,
	})
	if err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pick)
}

func (h *Handler) getQueue(w http.ResponseWriter, r *http.Request) {
	st, ok := h.store(w, r)
	if !ok {
		return
	}
	participantID, err := uuid.Parse(chi.URLParam(r, "participantID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid participant id")
		return
	}
	snap := st.Snapshot()
	queue := snap.State.Queue(participantID)
	if queue == nil {
		queue = []models.QueuedPlayer{}
	}
	writeJSON(w, http.StatusOK, queue)
}

type setQueueRequest struct {
	PlayerIDs []uuid.UUID `json:"player_ids"`
}

func (h *Handler) setQueue(w http.ResponseWriter, r *http.Request) {
	st, ok := h.store(w, r)
	if !ok {
		return
	}
	participantID, err := uuid.Parse(chi.URLParam(r, "participantID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid participant id")
		return
	}
	var req setQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now()
	entries := make([]models.QueuedPlayer, 0, len(req.PlayerIDs))
	for _, id := range req.PlayerIDs {
		player, known := h.pool.ByID(id)
		if !known {
			writeError(w, http.StatusBadRequest, "unknown player: "+id.String())
			return
		}
		entries = append(entries, models.QueuedPlayer{
			PlayerID:   player.ID,
			PlayerName: player.FullName,
			Position:   player.Position,
			QueuedAt:   now,
		})
	}

	if _, err := st.SetQueue(participantID, entries); err != nil {
		writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) startRoom(w http.ResponseWriter, r *http.Request) {
	st, ok := h.store(w, r)
	if !ok {
		return
	}
	snap, err := st.Start()
	if err != nil {
		writeRejection(w, err)
		return
	}
	if h.onRoomStarted != nil {
		h.onRoomStarted(st)
	}
	writeJSON(w, http.StatusOK, snap.Derived)
}

func (h *Handler) pauseRoom(w http.ResponseWriter, r *http.Request) {
	st, ok := h.store(w, r)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if _, err := st.Pause(body.Reason); err != nil {
		writeRejection(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resumeRoom(w http.ResponseWriter, r *http.Request) {
	st, ok := h.store(w, r)
	if !ok {
		return
	}
	if _, err := st.Resume(); err != nil {
		writeRejection(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearPicks(w http.ResponseWriter, r *http.Request) {
	st, ok := h.store(w, r)
	if !ok {
		return
	}
	if _, err := st.ClearPicks(); err != nil {
		writeRejection(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) wsConnect(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	if _, ok := h.registry.Get(roomID); !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	// In production the user id comes from the session; anonymous spectator
	// connections are allowed.
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "anonymous"
	}

	if err := h.cm.UpgradeConnection(w, r, userID, roomID); err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("websocket upgrade failed")
	}
}

func (h *Handler) wsStats(w http.ResponseWriter, r *http.Request) {
	total, rooms := h.cm.ConnectionStats()
	writeJSON(w, http.StatusOK, map[string]int{
		"total_connections": total,
		"active_rooms":      rooms,
	})
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*room.Store, bool) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return nil, false
	}
	st, ok := h.registry.Get(roomID)
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return nil, false
	}
	return st, true
}

type errorResponse struct {
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason"`
}

// writeRejection maps store errors to HTTP. Validation rejections are 409s
// with the machine-readable code so the client can resync and re-render.
func writeRejection(w http.ResponseWriter, err error) {
	var verr *room.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusConflict, errorResponse{Code: string(verr.Code), Reason: verr.Reason})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, errorResponse{Reason: reason})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
