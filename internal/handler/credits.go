package handler

import (
	"fmt"
	"net/http"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/guard"
	"github.com/clubstake/platform/internal/ledger"
	"github.com/google/uuid"
)

// CreditHandler receives validated credit events from the payment layer:
// membership fees and wallet deposits. Both are idempotent on the supplied
// external id; the guards in front only shed rate abuse and racing retries.
type CreditHandler struct {
	engine        *ledger.Engine
	membershipFee int64
	limiter       *guard.RateLimiter
	inflight      *guard.InflightGuard
}

// NewCreditHandler creates a CreditHandler. membershipFee is the fee the
// payment layer charges; membership credits with any other amount are
// rejected as malformed rather than booked.
func NewCreditHandler(engine *ledger.Engine, membershipFee int64, limiter *guard.RateLimiter, inflight *guard.InflightGuard) *CreditHandler {
	return &CreditHandler{engine: engine, membershipFee: membershipFee, limiter: limiter, inflight: inflight}
}

type creditRequest struct {
	UserID     uuid.UUID `json:"user_id"`
	Amount     int64     `json:"amount"`
	ExternalID string    `json:"external_id"`
}

type creditResponse struct {
	Entry      *domain.LedgerEntry `json:"entry"`
	Wallet     *domain.Wallet      `json:"wallet"`
	House      *domain.House       `json:"house,omitempty"`
	Idempotent bool                `json:"idempotent"`
}

// checkGuards runs the rate limiter and claims the external id. Callers must
// release the claim via h.inflight.End once the request finishes.
func (h *CreditHandler) checkGuards(r *http.Request, req creditRequest) *domain.AppError {
	if result := h.limiter.Check(r.Context(), req.UserID.String()); !result.Allowed {
		return &domain.AppError{Code: "RATE_LIMITED", Message: result.Reason, Status: http.StatusTooManyRequests}
	}
	if result := h.inflight.Begin(r.Context(), req.ExternalID); !result.Allowed {
		return domain.ErrConflict(result.Reason)
	}
	return nil
}

// PostMembership handles POST /credits/membership.
func (h *CreditHandler) PostMembership(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}
	if req.UserID == uuid.Nil {
		RespondError(w, domain.ErrValidation("user_id is required"))
		return
	}
	if req.Amount != h.membershipFee {
		RespondError(w, domain.ErrValidation(
			fmt.Sprintf("membership fee must be %d, got %d", h.membershipFee, req.Amount)))
		return
	}
	if guardErr := h.checkGuards(r, req); guardErr != nil {
		RespondError(w, guardErr)
		return
	}
	defer h.inflight.End(req.ExternalID)

	result, err := h.engine.RecordMembershipFee(r.Context(), domain.MembershipFeeParams{
		UserID:     req.UserID,
		Amount:     req.Amount,
		ExternalID: req.ExternalID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Idempotent {
		status = http.StatusOK
	}
	RespondJSON(w, status, creditResponse{
		Entry:      result.Entry,
		Wallet:     result.Wallet,
		House:      result.House,
		Idempotent: result.Idempotent,
	})
}

// PostDeposit handles POST /credits/deposit.
func (h *CreditHandler) PostDeposit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}
	if req.UserID == uuid.Nil {
		RespondError(w, domain.ErrValidation("user_id is required"))
		return
	}
	if guardErr := h.checkGuards(r, req); guardErr != nil {
		RespondError(w, guardErr)
		return
	}
	defer h.inflight.End(req.ExternalID)

	result, err := h.engine.RecordDeposit(r.Context(), domain.CreditParams{
		UserID:     req.UserID,
		Amount:     req.Amount,
		ExternalID: req.ExternalID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Idempotent {
		status = http.StatusOK
	}
	RespondJSON(w, status, creditResponse{
		Entry:      result.Entry,
		Wallet:     result.Wallet,
		Idempotent: result.Idempotent,
	})
}
