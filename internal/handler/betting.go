package handler

import (
	"net/http"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/service"
	"github.com/google/uuid"
)

// BettingHandler handles bet placement.
type BettingHandler struct {
	betting *service.BettingService
}

// NewBettingHandler creates a BettingHandler.
func NewBettingHandler(betting *service.BettingService) *BettingHandler {
	return &BettingHandler{betting: betting}
}

type placeBetRequest struct {
	UserID    uuid.UUID `json:"user_id"`
	EventID   uuid.UUID `json:"event_id"`
	Selection string    `json:"selection"`
	Amount    int64     `json:"amount"`
	Odds      int64     `json:"odds"`
}

// PostBet handles POST /bets.
func (h *BettingHandler) PostBet(w http.ResponseWriter, r *http.Request) {
	var req placeBetRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}
	if req.UserID == uuid.Nil || req.EventID == uuid.Nil {
		RespondError(w, domain.ErrValidation("user_id and event_id are required"))
		return
	}

	result, err := h.betting.PlaceBet(r.Context(), domain.PlaceBetParams{
		UserID:    req.UserID,
		EventID:   req.EventID,
		Selection: req.Selection,
		Amount:    req.Amount,
		Odds:      req.Odds,
	})
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}
