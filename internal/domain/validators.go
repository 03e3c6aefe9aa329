package domain

import "fmt"

// ValidatePositiveAmount checks that an amount is positive (in cents).
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return ErrValidation(fmt.Sprintf("amount must be positive, got %d", amount))
	}
	return nil
}

// ValidateOdds checks that decimal odds are above 1.00. Odds of exactly 1.00
// leave the bettor no possible profit and the stake cap undefined.
func ValidateOdds(odds int64) error {
	if odds <= OddsUnit {
		return ErrValidation(fmt.Sprintf("odds must be greater than %d (1.00), got %d", OddsUnit, odds))
	}
	return nil
}

// ValidateSelections checks event selections: at least two named outcomes,
// unique names, odds above 1.00.
func ValidateSelections(selections []Selection) error {
	if len(selections) < 2 {
		return ErrValidation("an event needs at least two selections")
	}
	seen := make(map[string]bool, len(selections))
	for _, s := range selections {
		if s.Name == "" {
			return ErrValidation("selection name is required")
		}
		if seen[s.Name] {
			return ErrValidation(fmt.Sprintf("duplicate selection %q", s.Name))
		}
		seen[s.Name] = true
		if err := ValidateOdds(s.Odds); err != nil {
			return err
		}
	}
	return nil
}
