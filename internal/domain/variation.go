package domain

// SpikeFilter configures spike suppression for [Variation].
type SpikeFilter struct {
	Enabled bool
	// Threshold is compared literally: a diff strictly greater than it is a spike.
	Threshold int
}

// Variation returns the first difference of s. The first entry is undefined.
//
// With the filter enabled, a diff above the threshold is replaced by the last
// diff that was not itself a spike. A spike with no such predecessor is left
// undefined.
func Variation(s Series, filter SpikeFilter) []Change {
	out := make([]Change, len(s))
	var (
		lastValid int
		haveValid bool
	)
	for i, p := range s {
		out[i].Date = p.Date
		if i == 0 {
			continue
		}

		diff := p.Value - s[i-1].Value
		if filter.Enabled && diff > filter.Threshold {
			if haveValid {
				out[i].Value = lastValid
				out[i].Defined = true
			}
			continue
		}

		out[i].Value = diff
		out[i].Defined = true
		lastValid, haveValid = diff, true
	}
	return out
}
