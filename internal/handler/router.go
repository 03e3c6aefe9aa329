package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Deps bundles everything the router needs.
type Deps struct {
	Credits *CreditHandler
	Wallet  *WalletHandler
	House   *HouseHandler
	Betting *BettingHandler
	Events  *EventHandler
	Health  http.HandlerFunc
	Logger  *slog.Logger
}

// NewRouter assembles the full HTTP surface.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(Recovery(d.Logger))
	r.Use(RequestID)
	r.Use(RequestLogger(d.Logger))
	r.Use(JSONContentType)

	r.Get("/health", d.Health)

	r.Route("/credits", func(r chi.Router) {
		r.Post("/membership", d.Credits.PostMembership)
		r.Post("/deposit", d.Credits.PostDeposit)
	})

	r.Route("/wallet/{userID}", func(r chi.Router) {
		r.Get("/balance", d.Wallet.GetBalance)
		r.Get("/statement", d.Wallet.GetStatement)
		r.Get("/bets", d.Wallet.GetBets)
	})

	r.Route("/house", func(r chi.Router) {
		r.Get("/", d.House.GetSnapshot)
		r.Get("/max-stake", d.House.GetMaxStake)
	})

	r.Post("/bets", d.Betting.PostBet)

	r.Route("/events", func(r chi.Router) {
		r.Post("/", d.Events.PostEvent)
		r.Get("/", d.Events.ListEvents)
		r.Get("/{eventID}", d.Events.GetEvent)
		r.Post("/{eventID}/settle", d.Events.PostSettle)
	})

	return r
}
