package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/guard"
	"github.com/clubstake/platform/internal/ledger"
	"github.com/clubstake/platform/internal/repository/memory"
	"github.com/clubstake/platform/internal/service"
	"github.com/clubstake/platform/internal/settlement"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := ledger.NewEngine(store, logger)
	betting := service.NewBettingService(store, eng, logger)
	settler := settlement.NewEngine(store, eng, logger)

	return NewRouter(Deps{
		Credits: NewCreditHandler(eng, 1_000, guard.NewRateLimiter(100, time.Minute), guard.NewInflightGuard()),
		Wallet:  NewWalletHandler(eng, betting),
		House:   NewHouseHandler(eng),
		Betting: NewBettingHandler(betting),
		Events:  NewEventHandler(betting, settler),
		Health: func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		},
		Logger: logger,
	})
}

func doJSON(t *testing.T, r chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(dst))
}

// postMembership enrolls a user over HTTP and returns their id.
func postMembership(t *testing.T, r chi.Router, amount int64) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	w := doJSON(t, r, "POST", "/credits/membership", map[string]interface{}{
		"user_id":     userID,
		"amount":      amount,
		"external_id": "fee-" + userID.String(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return userID
}

func postDeposit(t *testing.T, r chi.Router, userID uuid.UUID, amount int64) {
	t.Helper()
	w := doJSON(t, r, "POST", "/credits/deposit", map[string]interface{}{
		"user_id":     userID,
		"amount":      amount,
		"external_id": "dep-" + userID.String(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func postEvent(t *testing.T, r chi.Router) uuid.UUID {
	t.Helper()
	w := doJSON(t, r, "POST", "/events", map[string]interface{}{
		"name": "derby final",
		"selections": []map[string]interface{}{
			{"name": "home", "odds": 200},
			{"name": "away", "odds": 300},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var event domain.Event
	decode(t, w, &event)
	return event.ID
}

func TestCreditEndpoints(t *testing.T) {
	r := newTestRouter(t)

	userID := postMembership(t, r, 1_000)
	postDeposit(t, r, userID, 5_000)

	w := doJSON(t, r, "GET", "/wallet/"+userID.String()+"/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var balance struct {
		Balance int64 `json:"balance"`
	}
	decode(t, w, &balance)
	assert.Equal(t, int64(5_000), balance.Balance)

	// Redelivering the same deposit is a 200, not a second credit.
	w = doJSON(t, r, "POST", "/credits/deposit", map[string]interface{}{
		"user_id":     userID,
		"amount":      5_000,
		"external_id": "dep-" + userID.String(),
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Idempotent bool `json:"idempotent"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.Idempotent)

	// A membership credit with the wrong fee amount never reaches the ledger.
	w = doJSON(t, r, "POST", "/credits/membership", map[string]interface{}{
		"user_id":     uuid.New(),
		"amount":      int64(999),
		"external_id": "fee-x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreditEndpoints_RateLimited(t *testing.T) {
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := ledger.NewEngine(store, logger)
	betting := service.NewBettingService(store, eng, logger)

	router := NewRouter(Deps{
		Credits: NewCreditHandler(eng, 1_000, guard.NewRateLimiter(1, time.Minute), guard.NewInflightGuard()),
		Wallet:  NewWalletHandler(eng, betting),
		House:   NewHouseHandler(eng),
		Betting: NewBettingHandler(betting),
		Events:  NewEventHandler(betting, settlement.NewEngine(store, eng, logger)),
		Health:  func(w http.ResponseWriter, r *http.Request) {},
		Logger:  logger,
	})

	userID := uuid.New()
	body := map[string]interface{}{"user_id": userID, "amount": int64(1_000), "external_id": "a"}
	w := doJSON(t, router, "POST", "/credits/deposit", body)
	require.Equal(t, http.StatusCreated, w.Code)

	body["external_id"] = "b"
	w = doJSON(t, router, "POST", "/credits/deposit", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHouseEndpoints(t *testing.T) {
	r := newTestRouter(t)

	for i := 0; i < 10; i++ {
		postMembership(t, r, 1_000)
	}

	w := doJSON(t, r, "GET", "/house", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap domain.HouseSnapshot
	decode(t, w, &snap)
	assert.Equal(t, int64(10_000), snap.Balance)
	assert.Equal(t, int64(10_000), snap.Profit)

	w = doJSON(t, r, "GET", "/house/max-stake?odds=200", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stake struct {
		MaxStake int64 `json:"max_stake"`
	}
	decode(t, w, &stake)
	assert.Equal(t, int64(1_000), stake.MaxStake)

	w = doJSON(t, r, "GET", "/house/max-stake?odds=100", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBettingFlow(t *testing.T) {
	r := newTestRouter(t)

	for i := 0; i < 20; i++ {
		postMembership(t, r, 1_000)
	}
	userID := postMembership(t, r, 1_000)
	postDeposit(t, r, userID, 10_000)
	eventID := postEvent(t, r)

	w := doJSON(t, r, "POST", "/bets", map[string]interface{}{
		"user_id":   userID,
		"event_id":  eventID,
		"selection": "home",
		"amount":    int64(1_000),
		"odds":      int64(200),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var placed struct {
		Bet domain.Bet `json:"bet"`
	}
	decode(t, w, &placed)
	assert.Equal(t, int64(2_000), placed.Bet.PotentialWin)

	// Settle the event and confirm the payout landed.
	w = doJSON(t, r, "POST", fmt.Sprintf("/events/%s/settle", eventID), map[string]string{"winner": "home"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report domain.SettlementReport
	decode(t, w, &report)
	assert.Equal(t, 1, report.Winners)
	assert.Equal(t, int64(2_000), report.TotalPayout)

	w = doJSON(t, r, "GET", "/wallet/"+userID.String()+"/balance", nil)
	var balance struct {
		Balance int64 `json:"balance"`
	}
	decode(t, w, &balance)
	assert.Equal(t, int64(11_000), balance.Balance)

	// Settling again is a conflict.
	w = doJSON(t, r, "POST", fmt.Sprintf("/events/%s/settle", eventID), map[string]string{"winner": "home"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBetRejectionsCarryDetails(t *testing.T) {
	r := newTestRouter(t)

	for i := 0; i < 10; i++ {
		postMembership(t, r, 1_000)
	}
	userID := postMembership(t, r, 1_000)
	postDeposit(t, r, userID, 50_000)
	eventID := postEvent(t, r)

	w := doJSON(t, r, "POST", "/bets", map[string]interface{}{
		"user_id":   userID,
		"event_id":  eventID,
		"selection": "home",
		"amount":    int64(5_000),
		"odds":      int64(200),
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	}
	decode(t, w, &body)
	assert.Equal(t, domain.CodeBetTooLarge, body.Code)
	assert.Equal(t, float64(1_100), body.Details["max_stake"])
}

func TestEventEndpoints(t *testing.T) {
	r := newTestRouter(t)

	eventID := postEvent(t, r)

	w := doJSON(t, r, "GET", "/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Events []domain.Event `json:"events"`
	}
	decode(t, w, &list)
	require.Len(t, list.Events, 1)
	assert.Equal(t, eventID, list.Events[0].ID)

	w = doJSON(t, r, "GET", "/events/"+eventID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/events/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, "POST", "/events", map[string]interface{}{
		"name":       "bad",
		"selections": []map[string]interface{}{{"name": "only", "odds": 200}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondError_UnknownErrorIs500(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, domain.CodeInternal, body.Code)
}
