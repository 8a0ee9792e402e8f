package models

import (
	"fmt"
	"strings"
)

type Tier string

const (
	TierLow  Tier = "low"
	TierMid  Tier = "mid"
	TierHigh Tier = "high"
)

// TierDefinition describes one revenue window of the product directory.
// MaxRevenue of zero means the window is unbounded above.
type TierDefinition struct {
	Label      Tier
	URL        string
	MinRevenue float64
	MaxRevenue float64
}

// DefaultTiers returns the three listing windows in the order they are scraped.
func DefaultTiers(baseURL string) []TierDefinition {
	base := strings.TrimRight(baseURL, "/")
	return []TierDefinition{
		{
			Label:      TierLow,
			URL:        fmt.Sprintf("%s/products?minRevenue=0&maxRevenue=10000", base),
			MinRevenue: 0,
			MaxRevenue: 10000,
		},
		{
			Label:      TierMid,
			URL:        fmt.Sprintf("%s/products?minRevenue=10000&maxRevenue=100000", base),
			MinRevenue: 10000,
			MaxRevenue: 100000,
		},
		{
			Label:      TierHigh,
			URL:        fmt.Sprintf("%s/products?minRevenue=100000", base),
			MinRevenue: 100000,
		},
	}
}

func (t Tier) IsValid() bool {
	switch t {
	case TierLow, TierMid, TierHigh:
		return true
	}
	return false
}

// Contains reports whether amount lies inside the window. Both bounds are
// inclusive since the directory itself uses the boundary value on both sides.
func (d TierDefinition) Contains(amount float64) bool {
	if amount < d.MinRevenue {
		return false
	}
	if d.MaxRevenue > 0 && amount > d.MaxRevenue {
		return false
	}
	return true
}
