package risk

// Summary holds per-tier counts over a set of results.
type Summary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Untiered int `json:"untiered"`
}

// Summarize counts results by tier.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Tier {
		case TierCritical:
			s.Critical++
		case TierHigh:
			s.High++
		case TierMedium:
			s.Medium++
		case TierLow:
			s.Low++
		default:
			s.Untiered++
		}
	}
	return s
}

// Highest returns the most severe tier present, or TierNone.
func (s Summary) Highest() Tier {
	switch {
	case s.Critical > 0:
		return TierCritical
	case s.High > 0:
		return TierHigh
	case s.Medium > 0:
		return TierMedium
	case s.Low > 0:
		return TierLow
	default:
		return TierNone
	}
}
