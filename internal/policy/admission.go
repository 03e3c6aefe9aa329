// Package policy holds the pure wager admission rules. Evaluation touches
// no ledger: callers gather the locked wallet, event, and house records and
// apply the resulting decision.
package policy

import (
	"github.com/clubstake/platform/internal/domain"
)

// AdmissionDecision is the outcome of evaluating a wager request.
type AdmissionDecision struct {
	Allowed      bool
	Reject       *domain.AppError // non-nil iff !Allowed
	MaxStake     int64            // cap computed for the request's odds
	PotentialWin int64            // stake times odds
}

func reject(err *domain.AppError) AdmissionDecision {
	return AdmissionDecision{Allowed: false, Reject: err}
}

// EvaluateAdmission decides whether a wager may proceed, checking in order:
// membership, minimum stake, event open, selection and odds integrity, the
// per-bet stake cap, and finally the coarse 50%-of-bankroll coverage guard
// that bounds compounding exposure across simultaneously admitted bets.
//
// wallet may be nil for a never-seen user (no membership, zero balance).
func EvaluateAdmission(params domain.PlaceBetParams, wallet *domain.Wallet, event *domain.Event, house *domain.House) AdmissionDecision {
	if wallet == nil || !wallet.MembershipActive {
		return reject(domain.ErrMembershipNotActive(params.UserID.String()))
	}

	if params.Amount < domain.MinStake {
		return reject(domain.ErrMinimumBet(params.Amount))
	}

	if event == nil {
		return reject(domain.ErrNotFound("event", params.EventID.String()))
	}
	if !event.Open() {
		return reject(domain.ErrEventNotOpen(event.ID.String()))
	}

	selection := event.FindSelection(params.Selection)
	if selection == nil {
		return reject(domain.ErrValidation("unknown selection " + params.Selection))
	}
	if selection.Odds != params.Odds {
		// Stale quote: the caller saw different odds than the event carries.
		return reject(domain.ErrOddsMismatch(params.Odds, selection.Odds))
	}
	if err := domain.ValidateOdds(selection.Odds); err != nil {
		return reject(err.(*domain.AppError))
	}

	maxStake := house.MaxStake(selection.Odds)
	if params.Amount > maxStake {
		return reject(domain.ErrBetTooLarge(params.Amount, maxStake))
	}

	potentialWin := domain.PotentialWin(params.Amount, selection.Odds)
	if !house.CoversPayout(potentialWin) {
		return reject(domain.ErrInsufficientHouseCoverage(potentialWin, house.Balance))
	}

	return AdmissionDecision{Allowed: true, MaxStake: maxStake, PotentialWin: potentialWin}
}
