package modifier

import (
	"fmt"
	"math/rand"
	"time"
)

// Request describes one selection call: which categories to draw from, how
// many modifiers to return, and under which coherence level. Rand is the
// injected random source; a fixed seed reproduces a fixed result. Concurrent
// callers must each pass their own instance.
type Request struct {
	Categories []string
	Count      int
	Domain     string
	Level      Level
	Rand       *rand.Rand
}

// Selector draws validated modifier sets from a catalog. It holds no mutable
// state beyond the read-only catalog and is safe for concurrent use.
type Selector struct {
	catalog *Catalog
}

func NewSelector(catalog *Catalog) *Selector {
	return &Selector{catalog: catalog}
}

type candidate struct {
	mod    Modifier
	weight float64
}

// Select produces an ordered set of exactly req.Count modifier display
// strings, or a named error: ErrInvalidCoherenceLevel,
// *InsufficientCandidatesError, or *SelectionExhaustedError.
func (s *Selector) Select(req Request) ([]string, error) {
	policy, err := PolicyFor(req.Level)
	if err != nil {
		return nil, err
	}
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no modifier categories requested")
	}
	if req.Count <= 0 {
		return nil, fmt.Errorf("target modifier count must be positive, got %d", req.Count)
	}

	rng := req.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	pool, unknown := s.buildPool(req.Categories, req.Domain)

	spectrums := make(map[string]bool)
	for _, c := range pool {
		spectrums[c.mod.Spectrum] = true
	}
	if len(spectrums) < req.Count {
		return nil, &InsufficientCandidatesError{
			Categories: req.Categories,
			Unknown:    unknown,
			Spectrums:  len(spectrums),
			Target:     req.Count,
		}
	}

	rules := s.catalog.Rules()

	set := s.seedCombination(pool, req.Count, rules, policy)
	used := make(map[string]bool, len(set))
	for _, m := range set {
		used[m.Spectrum] = true
	}

	best := newBestTracker()
	best.consider(set, Validate(set, rules, policy))

	attempts := policy.MaxAttempts
	for len(set) < req.Count && attempts > 0 {
		next, ok := drawWeighted(rng, pool, used)
		if !ok {
			break
		}

		trial := append(append([]Modifier(nil), set...), next)
		res := Validate(trial, rules, policy)
		best.consider(trial, res)

		if res.OK {
			set = trial
			used[next.Spectrum] = true
			continue
		}
		attempts--
	}

	if len(set) == req.Count {
		return texts(set), nil
	}

	if policy.AllowContradictionFallback {
		return texts(best.set), nil
	}
	return nil, &SelectionExhaustedError{
		Categories: req.Categories,
		Level:      req.Level,
		Attempts:   policy.MaxAttempts,
	}
}

// buildPool collects the candidates under the requested categories. Each
// modifier carries its category's domain weight; modifiers of the same
// category share one weight.
func (s *Selector) buildPool(categories []string, domain string) ([]candidate, []string) {
	var pool []candidate
	var unknown []string
	for _, name := range categories {
		if !s.catalog.HasCategory(name) {
			unknown = append(unknown, name)
			continue
		}
		weight := s.catalog.DomainWeight(domain, name)
		for _, m := range s.catalog.ModifiersFor([]string{name}) {
			pool = append(pool, candidate{mod: m, weight: weight})
		}
	}
	return pool, unknown
}

// seedCombination picks the preferred complementary combination whose members
// are all in the pool on distinct spectrums and fit within count: largest
// first, catalog declaration order breaking ties. A seed that fails
// validation on its own is dropped; seeding is attempted, not guaranteed.
func (s *Selector) seedCombination(pool []candidate, count int, rules Rules, policy Policy) []Modifier {
	inPool := make(map[string]Modifier, len(pool))
	for _, c := range pool {
		inPool[c.mod.Text] = c.mod
	}

	var seed []Modifier
	for _, combo := range s.catalog.ComplementaryCombinations() {
		if len(combo.Members) > count || len(combo.Members) <= len(seed) {
			continue
		}
		members, ok := resolveCombo(combo, inPool)
		if !ok {
			continue
		}
		seed = members
	}
	if seed == nil {
		return nil
	}

	if res := Validate(seed, rules, policy); !res.OK {
		return nil
	}
	return seed
}

func resolveCombo(combo ComplementaryCombination, inPool map[string]Modifier) ([]Modifier, bool) {
	members := make([]Modifier, 0, len(combo.Members))
	spectrums := make(map[string]bool, len(combo.Members))
	for _, text := range combo.Members {
		m, ok := inPool[text]
		if !ok || spectrums[m.Spectrum] {
			return nil, false
		}
		spectrums[m.Spectrum] = true
		members = append(members, m)
	}
	return members, true
}

// drawWeighted makes one weighted random pick from the pool, skipping
// candidates whose spectrum is already represented. Returns false when no
// eligible candidate remains.
func drawWeighted(rng *rand.Rand, pool []candidate, usedSpectrums map[string]bool) (Modifier, bool) {
	var eligible []candidate
	total := 0.0
	for _, c := range pool {
		if usedSpectrums[c.mod.Spectrum] {
			continue
		}
		eligible = append(eligible, c)
		total += c.weight
	}
	if len(eligible) == 0 {
		return Modifier{}, false
	}
	if total <= 0 {
		return eligible[rng.Intn(len(eligible))].mod, true
	}

	roll := rng.Float64() * total
	cumulative := 0.0
	for _, c := range eligible {
		cumulative += c.weight
		if roll <= cumulative {
			return c.mod, true
		}
	}
	return eligible[len(eligible)-1].mod, true
}

// bestTracker remembers the best candidate set seen across the retry loop for
// contradiction-fallback mode: fewest contradictions, then larger size, then
// tighter intensity spread.
type bestTracker struct {
	set   []Modifier
	res   Result
	valid bool
}

func newBestTracker() *bestTracker {
	return &bestTracker{}
}

func (b *bestTracker) consider(set []Modifier, res Result) {
	if len(set) == 0 {
		return
	}
	if !b.valid || betterThan(set, res, b.set, b.res) {
		b.set = append([]Modifier(nil), set...)
		b.res = res
		b.valid = true
	}
}

func betterThan(set []Modifier, res Result, other []Modifier, otherRes Result) bool {
	if res.Contradictions != otherRes.Contradictions {
		return res.Contradictions < otherRes.Contradictions
	}
	if len(set) != len(other) {
		return len(set) > len(other)
	}
	return res.Spread < otherRes.Spread
}

func texts(set []Modifier) []string {
	out := make([]string, len(set))
	for i, m := range set {
		out[i] = m.Text
	}
	return out
}
