package spatial

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the session's status and control endpoints using go-chi.
type Handler struct {
	session *Session
	sim     *Simulator
	log     *slog.Logger
}

// NewHandler returns a Handler for the session. sim may be nil when the
// enumerator is not the simulator; the simulator endpoints then report a
// conflict.
func NewHandler(session *Session, sim *Simulator, log *slog.Logger) *Handler {
	return &Handler{session: session, sim: sim, log: log}
}

// Routes mounts the handler's endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/controllers", h.ListControllers)
	r.Get("/controllers/{source_id}", h.GetController)
	r.Get("/gestures/settings", h.GetGestureSettings)
	r.Put("/gestures/settings", h.UpdateGestureSettings)
	r.Post("/simulator/frame", h.PushSimulatorFrame)
	r.Delete("/simulator/frame", h.ClearSimulatorFrame)
}

// ListControllers handles GET /controllers.
func (h *Handler) ListControllers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Controllers())
}

// GetController handles GET /controllers/{source_id}.
func (h *Handler) GetController(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "source_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	status, ok := h.session.Controller(SourceID(id))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// GetGestureSettings handles GET /gestures/settings.
func (h *Handler) GetGestureSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.GestureSettings())
}

// UpdateGestureSettings handles PUT /gestures/settings. The change cancels
// in-flight gestures and rebuilds the recognizer.
func (h *Handler) UpdateGestureSettings(w http.ResponseWriter, r *http.Request) {
	var settings GestureSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		h.log.Debug("invalid gesture settings body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := validateStartBehaviour(settings.StartBehaviour); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if settings.StartBehaviour == "" {
		settings.StartBehaviour = GestureStartAuto
	}

	if err := h.session.UpdateGestureSettings(settings); err != nil {
		if errors.Is(err, ErrSessionClosed) {
			w.WriteHeader(http.StatusConflict)
			return
		}
		h.log.Error("update gesture settings failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.log.Info("gesture settings applied",
		slog.String("start_behaviour", string(settings.StartBehaviour)))
	writeJSON(w, http.StatusOK, settings)
}

// PushSimulatorFrame handles POST /simulator/frame.
// Body: [{ "id": 7, "snapshot": { ... } }, ...].
func (h *Handler) PushSimulatorFrame(w http.ResponseWriter, r *http.Request) {
	if h.sim == nil {
		w.WriteHeader(http.StatusConflict)
		return
	}
	var entries []SourceEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		h.log.Debug("invalid simulator frame", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	h.sim.SetFrame(entries)
	h.log.Debug("simulator frame set", slog.Int("sources", len(entries)))
	w.WriteHeader(http.StatusAccepted)
}

// ClearSimulatorFrame handles DELETE /simulator/frame; the simulator then
// reports enumeration as unavailable.
func (h *Handler) ClearSimulatorFrame(w http.ResponseWriter, r *http.Request) {
	if h.sim == nil {
		w.WriteHeader(http.StatusConflict)
		return
	}
	h.sim.ClearFrame()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
