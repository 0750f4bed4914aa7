package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownPriority is returned when a priority label cannot be parsed.
var ErrUnknownPriority = errors.New("unknown priority")

// Priority ranks a proposed location for investment.
type Priority int

const (
	PriorityMedium Priority = iota + 1
	PriorityHigh
	PriorityVeryHigh
)

// Priorities lists every priority from most to least important.
var Priorities = []Priority{PriorityVeryHigh, PriorityHigh, PriorityMedium}

// String returns the display label.
func (p Priority) String() string {
	switch p {
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityVeryHigh:
		return "Very High"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// Valid reports whether p is one of the declared priorities.
func (p Priority) Valid() bool {
	return p >= PriorityMedium && p <= PriorityVeryHigh
}

// ParsePriority accepts "VeryHigh", "Very High", "very-high" and similar
// spellings, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	switch key {
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "veryhigh":
		return PriorityVeryHigh, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPriority, s)
	}
}

// MarshalText encodes the display label.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPriority, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText accepts any spelling understood by ParsePriority.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Location is a proposed charging site. Investment is in lakhs of rupees.
type Location struct {
	Name                string          `json:"name"`
	Latitude            float64         `json:"latitude"`
	Longitude           float64         `json:"longitude"`
	AreaType            string          `json:"area_type"`
	Priority            Priority        `json:"priority"`
	DailyTraffic        int             `json:"estimated_daily_traffic"`
	RecommendedChargers int             `json:"recommended_chargers"`
	Investment          decimal.Decimal `json:"investment_lakhs"`
	ROIMonths           int             `json:"expected_roi_months"`
	Landmarks           string          `json:"nearby_landmarks"`
}

// DisplayName strips the trailing "(Proposed)" marker.
func (l Location) DisplayName() string {
	if idx := strings.Index(l.Name, "("); idx >= 0 {
		return strings.TrimSpace(l.Name[:idx])
	}
	return l.Name
}
