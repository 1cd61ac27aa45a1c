package domain

import "fmt"

// Skill levels follow the NTRP-style 0.0–7.0 scale. Player counts are bounded
// by policy, not by storage.
const (
	MinSkillLevel = 0.0
	MaxSkillLevel = 7.0

	MinGamePlayers = 2
	MaxGamePlayers = 4
)

// Validators return *AppError with code VALIDATION_ERROR so handlers can pass
// failures straight to the response writer.

// ValidateSkillLevel checks a single skill rating.
func ValidateSkillLevel(v float64) error {
	if v < MinSkillLevel || v > MaxSkillLevel {
		return ErrValidation(fmt.Sprintf("skill level must be between %.1f and %.1f, got %.1f", MinSkillLevel, MaxSkillLevel, v))
	}
	return nil
}

// ValidateSkillBounds checks a game's min/max skill range.
func ValidateSkillBounds(min, max float64) error {
	if err := ValidateSkillLevel(min); err != nil {
		return err
	}
	if err := ValidateSkillLevel(max); err != nil {
		return err
	}
	if min > max {
		return ErrValidation(fmt.Sprintf("min skill %.1f exceeds max skill %.1f", min, max))
	}
	return nil
}

// ValidateMaxPlayers checks the game capacity bound.
func ValidateMaxPlayers(n int) error {
	if n < MinGamePlayers || n > MaxGamePlayers {
		return ErrValidation(fmt.Sprintf("max players must be between %d and %d, got %d", MinGamePlayers, MaxGamePlayers, n))
	}
	return nil
}

// ValidateSchedule checks that a game starts in the future and ends after it
// starts. All arguments are epoch seconds.
func ValidateSchedule(startsAt, endsAt, now int64) error {
	if startsAt <= now {
		return ErrValidation("game start time must be in the future")
	}
	if endsAt <= startsAt {
		return ErrValidation("game end time must be after the start time")
	}
	return nil
}

// ValidateCourtCost checks that a court cost (integer cents) is non-negative.
func ValidateCourtCost(cents int64) error {
	if cents < 0 {
		return ErrValidation(fmt.Sprintf("court cost must not be negative, got %d", cents))
	}
	return nil
}
