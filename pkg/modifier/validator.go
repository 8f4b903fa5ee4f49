package modifier

import "fmt"

// Result reports whether a candidate set satisfies the rules, with one reason
// per violation in check order.
type Result struct {
	OK         bool
	Violations []string

	// Contradictions counts pairwise contradiction violations; Spread is the
	// observed intensity spread. The selector uses both to rank best-effort
	// fallback sets.
	Contradictions int
	Spread         int
}

// Validate checks a candidate set against the contradiction rules and the
// policy's intensity spread limit. It is pure: no I/O, no errors, only a
// report.
func Validate(set []Modifier, rules Rules, policy Policy) Result {
	var res Result

	for i := 0; i < len(set); i++ {
		for j := i + 1; j < len(set); j++ {
			if contradicts(set[i], set[j], rules.Contradictions) {
				res.Contradictions++
				res.Violations = append(res.Violations,
					fmt.Sprintf("contradiction: %q vs %q", set[i].Text, set[j].Text))
			}
		}
	}

	res.Spread = intensitySpread(set)
	if policy.IntensitySpreadLimit >= 0 && res.Spread > policy.IntensitySpreadLimit {
		res.Violations = append(res.Violations,
			fmt.Sprintf("intensity spread %d exceeds limit %d", res.Spread, policy.IntensitySpreadLimit))
	}

	res.OK = len(res.Violations) == 0
	return res
}

// contradicts reports whether a declared rule matches the pair, by modifier
// text or by owning spectrum id, in either order.
func contradicts(a, b Modifier, rules []ContradictionRule) bool {
	for _, r := range rules {
		if matchesID(a, r.A) && matchesID(b, r.B) {
			return true
		}
		if matchesID(a, r.B) && matchesID(b, r.A) {
			return true
		}
	}
	return false
}

func matchesID(m Modifier, id string) bool {
	return m.Text == id || m.Spectrum == id
}

func intensitySpread(set []Modifier) int {
	if len(set) == 0 {
		return 0
	}
	lo, hi := set[0].Intensity, set[0].Intensity
	for _, m := range set[1:] {
		if m.Intensity < lo {
			lo = m.Intensity
		}
		if m.Intensity > hi {
			hi = m.Intensity
		}
	}
	return int(hi - lo)
}
