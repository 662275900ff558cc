package domain

import "github.com/diagnosis/shelter-loyalty/services/loyalty/internal/normalize"

// Tier is one step of the seasonal loyalty progression.
type Tier struct {
	Rank    int    // 1-based
	Key     string // lower-case canonical label
	Display string
}

var tiers = []Tier{
	{Rank: 1, Key: "1 сезон", Display: "1 СЕЗОН"},
	{Rank: 2, Key: "2 сезона", Display: "2 СЕЗОНА"},
	{Rank: 3, Key: "3 сезона", Display: "3 СЕЗОНА"},
	{Rank: 4, Key: "4 сезона", Display: "4 СЕЗОНА"},
}

func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// LookupTier matches label against the tier table ignoring case and spacing.
func LookupTier(label string) (Tier, bool) {
	key := normalize.Key(label)
	if key == "" {
		return Tier{}, false
	}
	for _, t := range tiers {
		if t.Key == key {
			return t, true
		}
	}
	return Tier{}, false
}

// NextTier returns the display label of the tier after current. Unknown or empty labels
// start at the first tier and the last tier stays where it is.
func NextTier(current string) string {
	t, ok := LookupTier(current)
	if !ok {
		return tiers[0].Display
	}
	next := t.Rank // Rank is 1-based, so it already indexes the following tier
	if next > len(tiers)-1 {
		next = len(tiers) - 1
	}
	return tiers[next].Display
}
