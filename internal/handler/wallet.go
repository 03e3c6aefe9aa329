package handler

import (
	"net/http"
	"strconv"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/ledger"
	"github.com/clubstake/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// WalletHandler handles wallet balance, statement, and bet listing endpoints.
type WalletHandler struct {
	engine  *ledger.Engine
	betting *service.BettingService
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(engine *ledger.Engine, betting *service.BettingService) *WalletHandler {
	return &WalletHandler{engine: engine, betting: betting}
}

func userIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid user id")
	}
	return id, nil
}

// GetBalance handles GET /wallet/{userID}/balance. A never-seen user reads
// as a zero balance, matching the lazy wallet default.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	balance, err := h.engine.WalletBalance(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"balance": balance,
	})
}

// GetStatement handles GET /wallet/{userID}/statement.
func (h *WalletHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, _ = strconv.Atoi(s)
	}

	entries, err := h.engine.Statement(r.Context(), userID, limit)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"entries": entries,
	})
}

// GetBets handles GET /wallet/{userID}/bets?active=true.
func (h *WalletHandler) GetBets(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	bets, err := h.betting.UserBets(r.Context(), userID, activeOnly)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"bets":    bets,
	})
}
