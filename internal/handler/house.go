package handler

import (
	"net/http"
	"strconv"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/ledger"
)

// HouseHandler exposes the read-only bankroll views.
type HouseHandler struct {
	engine *ledger.Engine
}

// NewHouseHandler creates a HouseHandler.
func NewHouseHandler(engine *ledger.Engine) *HouseHandler {
	return &HouseHandler{engine: engine}
}

// GetSnapshot handles GET /house.
func (h *HouseHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.HouseSnapshot(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, snap)
}

// GetMaxStake handles GET /house/max-stake?odds=200.
func (h *HouseHandler) GetMaxStake(w http.ResponseWriter, r *http.Request) {
	odds, err := strconv.ParseInt(r.URL.Query().Get("odds"), 10, 64)
	if err != nil {
		RespondError(w, domain.ErrValidation("odds query parameter is required"))
		return
	}

	maxStake, err := h.engine.MaxStake(r.Context(), odds)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]int64{
		"odds":      odds,
		"max_stake": maxStake,
	})
}
