package scoring

// Factor weights of the resurfacing heuristic. Scores are additive per
// candidate and clamped to [0, 1] before the acceptance threshold applies.
const (
	// promptMatchBonus rewards an exact prompt-text match against the
	// eligible set.
	promptMatchBonus = 0.6

	// categoryAffinityWeight scales the category's recent usage frequency
	// (a value in [0, 1]).
	categoryAffinityWeight = 0.3

	// freeFormPenalty nudges unguided catch-all recordings below guided
	// ones.
	freeFormPenalty = 0.1

	// Anniversary bonuses: same day-of-month as now, at least one whole
	// month back. Milestone months are 3, 6, 9 and 12.
	milestoneAnniversaryBonus = 0.4
	genericAnniversaryBonus   = 0.2

	// midWindowBonus applies to entries 3..6 whole months old, the sweet
	// spot of the policy.
	midWindowBonus = 0.2

	// DefaultThreshold is the general acceptance threshold; a candidate
	// below it is never surfaced.
	DefaultThreshold = 0.3

	// AnniversaryThreshold is the stricter bar used by the
	// anniversary-only search pass.
	AnniversaryThreshold = 0.5
)

// recencyPenalty returns the deduction for an entry shown daysAgo days ago.
// Anything surfaced in the last week is effectively knocked out; the penalty
// decays in steps until sixty days have passed.
func recencyPenalty(daysAgo int) float64 {
	switch {
	case daysAgo < 0:
		return 0
	case daysAgo <= 7:
		return 0.8
	case daysAgo <= 14:
		return 0.6
	case daysAgo <= 30:
		return 0.4
	case daysAgo <= 60:
		return 0.2
	default:
		return 0
	}
}

// timeWindowBonus returns the temporal-relevance contribution for an entry
// monthsAgo whole months old. The 1..3 and 6..12 month shoulders ramp
// linearly toward the 3..6 month plateau.
func timeWindowBonus(monthsAgo int) float64 {
	switch {
	case monthsAgo >= 3 && monthsAgo <= 6:
		return midWindowBonus
	case monthsAgo >= 1 && monthsAgo < 3:
		// 0.10 at one month, 0.15 approaching three.
		return 0.10 + 0.05*float64(monthsAgo-1)/2
	case monthsAgo > 6 && monthsAgo <= 12:
		// 0.10 just past six months, decaying to 0.05 at a year.
		return 0.10 - 0.05*float64(monthsAgo-6)/6
	default:
		return 0
	}
}

func isMilestoneMonth(monthsAgo int) bool {
	switch monthsAgo {
	case 3, 6, 9, 12:
		return true
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
