// Package risk is the single ownership point for severity mapping.
// Every view that needs a color or label for a risk score or clause level
// goes through here; the mapping is never duplicated in presentation code.
package risk

import "strings"

// Level is the three-tier severity vocabulary used for individual clauses.
type Level int

const (
	LevelUnknown Level = iota // unrecognized input, default visual treatment
	LevelLow
	LevelMedium
	LevelHigh
)

// String returns the display name for a level.
func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "high"
	case LevelMedium:
		return "medium"
	case LevelLow:
		return "low"
	}
	return "unknown"
}

// Badge returns the uppercase badge text shown on clause cards.
func (l Level) Badge() string {
	switch l {
	case LevelHigh:
		return "HIGH RISK"
	case LevelMedium:
		return "MEDIUM RISK"
	case LevelLow:
		return "LOW RISK"
	}
	return "UNRATED"
}

// ParseLevel maps a wire risk_level string to a Level. The backend owns the
// vocabulary; anything it sends outside {high, medium, low} degrades to
// LevelUnknown rather than failing rendering.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return LevelHigh
	case "medium":
		return LevelMedium
	case "low":
		return LevelLow
	}
	return LevelUnknown
}

// Band is the four-tier severity band for the overall risk score.
type Band int

const (
	BandLow       Band = iota // score < 4
	BandLowMedium             // 4 <= score < 6
	BandMedium                // 6 <= score < 8
	BandHigh                  // score >= 8
)

// String returns the display name for a band.
func (b Band) String() string {
	switch b {
	case BandHigh:
		return "high"
	case BandMedium:
		return "medium"
	case BandLowMedium:
		return "low-medium"
	}
	return "low"
}

// ScoreBand maps an overall risk score to its severity band. Total and
// monotonic over the whole float range, not just [0,10]: out-of-range
// scores from the backend still land in the nearest band.
func ScoreBand(score float64) Band {
	switch {
	case score >= 8:
		return BandHigh
	case score >= 6:
		return BandMedium
	case score >= 4:
		return BandLowMedium
	}
	return BandLow
}
