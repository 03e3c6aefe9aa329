package domain

import (
	"errors"
	"fmt"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Status  int                    `json:"-"`
	Cause   error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Error codes surfaced by the engine.
const (
	CodeNotFound                  = "NOT_FOUND"
	CodeValidation                = "VALIDATION_ERROR"
	CodeConflict                  = "CONFLICT"
	CodeInternal                  = "INTERNAL_ERROR"
	CodeInsufficientFunds         = "INSUFFICIENT_FUNDS"
	CodeMinimumBet                = "MINIMUM_BET"
	CodeEventNotOpen              = "EVENT_NOT_OPEN"
	CodeBetTooLarge               = "BET_TOO_LARGE"
	CodeInsufficientHouseCoverage = "INSUFFICIENT_HOUSE_COVERAGE"
	CodeInsufficientHouseFunds    = "INSUFFICIENT_HOUSE_FUNDS"
	CodeAlreadySettled            = "ALREADY_SETTLED"
	CodeEventAlreadySettled       = "EVENT_ALREADY_SETTLED"
	CodeOddsMismatch              = "ODDS_MISMATCH"
	CodeMembershipNotActive       = "MEMBERSHIP_NOT_ACTIVE"
)

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: CodeConflict, Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, Status: 400}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: msg, Status: 500, Cause: cause}
}

// ErrInsufficientFunds signals a wallet debit exceeding the balance.
func ErrInsufficientFunds(userID string) *AppError {
	return &AppError{
		Code:    CodeInsufficientFunds,
		Message: fmt.Sprintf("wallet %s has insufficient funds", userID),
		Status:  400,
	}
}

// ErrMinimumBet signals a stake below MinStake.
func ErrMinimumBet(amount int64) *AppError {
	return &AppError{
		Code:    CodeMinimumBet,
		Message: fmt.Sprintf("stake %d is below the minimum of %d", amount, MinStake),
		Details: map[string]interface{}{"min_stake": MinStake},
		Status:  400,
	}
}

// ErrEventNotOpen signals a bet on an event that is no longer upcoming.
func ErrEventNotOpen(eventID string) *AppError {
	return &AppError{
		Code:    CodeEventNotOpen,
		Message: fmt.Sprintf("event %s is not open for betting", eventID),
		Status:  409,
	}
}

// ErrBetTooLarge carries the computed stake cap so the caller can retry smaller.
func ErrBetTooLarge(amount, maxStake int64) *AppError {
	return &AppError{
		Code:    CodeBetTooLarge,
		Message: fmt.Sprintf("stake %d exceeds the current maximum of %d", amount, maxStake),
		Details: map[string]interface{}{"max_stake": maxStake},
		Status:  422,
	}
}

// ErrInsufficientHouseCoverage signals a potential payout above the 50% bankroll guard.
func ErrInsufficientHouseCoverage(potentialWin, houseBalance int64) *AppError {
	return &AppError{
		Code:    CodeInsufficientHouseCoverage,
		Message: fmt.Sprintf("potential payout %d exceeds half the house bankroll of %d", potentialWin, houseBalance),
		Details: map[string]interface{}{"potential_win": potentialWin, "house_balance": houseBalance},
		Status:  422,
	}
}

// ErrInsufficientHouseFunds signals a failed settlement solvency gate.
// The event stays open; the caller may retry once the bankroll recovers.
func ErrInsufficientHouseFunds(required, available int64) *AppError {
	return &AppError{
		Code:    CodeInsufficientHouseFunds,
		Message: fmt.Sprintf("settlement requires %d but house bankroll is %d", required, available),
		Details: map[string]interface{}{
			"required":  required,
			"available": available,
			"shortfall": required - available,
		},
		Status: 409,
	}
}

// ErrAlreadySettled signals a second MarkSettled on the same bet.
func ErrAlreadySettled(betID string) *AppError {
	return &AppError{Code: CodeAlreadySettled, Message: fmt.Sprintf("bet %s is already settled", betID), Status: 409}
}

// ErrEventAlreadySettled signals a second Settle on the same event.
func ErrEventAlreadySettled(eventID string) *AppError {
	return &AppError{Code: CodeEventAlreadySettled, Message: fmt.Sprintf("event %s is already settled", eventID), Status: 409}
}

// ErrOddsMismatch signals a stale odds quote on bet placement.
func ErrOddsMismatch(quoted, current int64) *AppError {
	return &AppError{
		Code:    CodeOddsMismatch,
		Message: fmt.Sprintf("quoted odds %d do not match current odds %d", quoted, current),
		Details: map[string]interface{}{"quoted": quoted, "current": current},
		Status:  409,
	}
}

// ErrMembershipNotActive signals a bet from a user without a paid membership.
func ErrMembershipNotActive(userID string) *AppError {
	return &AppError{
		Code:    CodeMembershipNotActive,
		Message: fmt.Sprintf("user %s has no active membership", userID),
		Status:  403,
	}
}
