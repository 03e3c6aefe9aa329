package handler

import (
	"net/http"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/service"
	"github.com/clubstake/platform/internal/settlement"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// EventHandler handles event lifecycle endpoints: creation, listing, and
// settlement.
type EventHandler struct {
	betting    *service.BettingService
	settlement *settlement.Engine
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(betting *service.BettingService, settlement *settlement.Engine) *EventHandler {
	return &EventHandler{betting: betting, settlement: settlement}
}

func eventIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid event id")
	}
	return id, nil
}

// PostEvent handles POST /events.
func (h *EventHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	var req service.CreateEventParams
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	event, err := h.betting.CreateEvent(r.Context(), req)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.betting.ListOpenEvents(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// GetEvent handles GET /events/{eventID}.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDFromPath(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	event, err := h.betting.GetEvent(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, event)
}

type settleRequest struct {
	Winner string `json:"winner"`
}

// PostSettle handles POST /events/{eventID}/settle.
func (h *EventHandler) PostSettle(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDFromPath(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req settleRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	report, err := h.settlement.Settle(r.Context(), id, req.Winner)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, report)
}
