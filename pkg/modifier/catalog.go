// Package modifier selects coherent sets of behavioral modifiers for
// generated personas. A catalog defines categories of trait spectrums plus
// rules (contradictions, complementary combinations, domain weights); the
// selector draws from it under a coherence policy.
package modifier

import (
	"encoding/json"
	"fmt"
	"os"
)

// Intensity is the global strength level of a modifier, comparable across
// spectrums. It is derived from the modifier's position within its spectrum's
// low-to-high ordering.
type Intensity int

const (
	IntensityMild Intensity = iota
	IntensityModerate
	IntensityHigh
	IntensityExtreme
)

var intensityNames = map[Intensity]string{
	IntensityMild:     "mild",
	IntensityModerate: "moderate",
	IntensityHigh:     "high",
	IntensityExtreme:  "extreme",
}

func (i Intensity) String() string {
	if name, ok := intensityNames[i]; ok {
		return name
	}
	return fmt.Sprintf("intensity(%d)", int(i))
}

// Modifier is one selectable trait string, e.g. "mildly anxious".
type Modifier struct {
	Text      string
	Category  string
	Spectrum  string // qualified id, "category/spectrum"
	Intensity Intensity
}

// ContradictionRule declares two identifiers as mutually incompatible.
// Each side is either a modifier text or a qualified spectrum id.
type ContradictionRule struct {
	A string
	B string
}

// ComplementaryCombination is a pre-validated grouping of modifier texts the
// selector tries to seed with before independent random picks.
type ComplementaryCombination struct {
	Members []string
}

// Rules is the immutable rule set the validator checks candidate sets against.
type Rules struct {
	Contradictions []ContradictionRule
}

type spectrumDef struct {
	Name      string   `json:"name"`
	Modifiers []string `json:"modifiers"`
}

type categoryDef struct {
	Name      string        `json:"name"`
	Spectrums []spectrumDef `json:"spectrums"`
}

type rulesDef struct {
	Contradictions [][]string                    `json:"contradictions"`
	Complementary  [][]string                    `json:"complementary"`
	DomainWeights  map[string]map[string]float64 `json:"domain_weights"`
}

type catalogFile struct {
	Categories []categoryDef `json:"categories"`
	Rules      rulesDef      `json:"rules"`
}

// Catalog is the loaded, indexed modifier definition. It is built once by
// Load and read-only afterwards, safe to share across goroutines.
type Catalog struct {
	categories []string
	byCategory map[string][]Modifier
	byText     map[string]Modifier

	contradictions []ContradictionRule
	combos         []ComplementaryCombination
	domainWeights  map[string]map[string]float64
}

// Load reads and indexes a catalog file. It returns a *LoadError if the file
// is missing, malformed, or a rule references an unknown modifier.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	cat, err := build(&file)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return cat, nil
}

func build(file *catalogFile) (*Catalog, error) {
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("catalog declares no categories")
	}

	cat := &Catalog{
		byCategory:    make(map[string][]Modifier),
		byText:        make(map[string]Modifier),
		domainWeights: file.Rules.DomainWeights,
	}

	spectrumIDs := make(map[string]bool)

	for _, cd := range file.Categories {
		if cd.Name == "" {
			return nil, fmt.Errorf("catalog contains an unnamed category")
		}
		if _, dup := cat.byCategory[cd.Name]; dup {
			return nil, fmt.Errorf("duplicate category %q", cd.Name)
		}
		if len(cd.Spectrums) == 0 {
			return nil, fmt.Errorf("category %q declares no spectrums", cd.Name)
		}

		var members []Modifier
		for _, sd := range cd.Spectrums {
			if sd.Name == "" {
				return nil, fmt.Errorf("category %q contains an unnamed spectrum", cd.Name)
			}
			if len(sd.Modifiers) == 0 {
				return nil, fmt.Errorf("spectrum %q/%q declares no modifiers", cd.Name, sd.Name)
			}

			spectrumID := cd.Name + "/" + sd.Name
			if spectrumIDs[spectrumID] {
				return nil, fmt.Errorf("duplicate spectrum %q", spectrumID)
			}
			spectrumIDs[spectrumID] = true

			for i, text := range sd.Modifiers {
				if text == "" {
					return nil, fmt.Errorf("spectrum %q declares an empty modifier", spectrumID)
				}
				if _, dup := cat.byText[text]; dup {
					return nil, fmt.Errorf("duplicate modifier %q", text)
				}
				mod := Modifier{
					Text:      text,
					Category:  cd.Name,
					Spectrum:  spectrumID,
					Intensity: rankIntensity(i, len(sd.Modifiers)),
				}
				members = append(members, mod)
				cat.byText[text] = mod
			}
		}
		cat.categories = append(cat.categories, cd.Name)
		cat.byCategory[cd.Name] = members
	}

	for _, pair := range file.Rules.Contradictions {
		if len(pair) != 2 {
			return nil, fmt.Errorf("contradiction rule %v must have exactly two members", pair)
		}
		for _, id := range pair {
			if !cat.knownID(id, spectrumIDs) {
				return nil, fmt.Errorf("contradiction rule references unknown id %q", id)
			}
		}
		cat.contradictions = append(cat.contradictions, ContradictionRule{A: pair[0], B: pair[1]})
	}

	for _, members := range file.Rules.Complementary {
		if len(members) < 2 {
			return nil, fmt.Errorf("complementary combination %v must have at least two members", members)
		}
		for _, text := range members {
			if _, ok := cat.byText[text]; !ok {
				return nil, fmt.Errorf("complementary combination references unknown modifier %q", text)
			}
		}
		combo := ComplementaryCombination{Members: append([]string(nil), members...)}
		cat.combos = append(cat.combos, combo)
	}

	return cat, nil
}

// rankIntensity maps a modifier's ordinal position within its spectrum to the
// global intensity scale. The lowest member is mild, the highest extreme;
// middle members spread evenly.
func rankIntensity(index, size int) Intensity {
	if size <= 1 {
		return IntensityModerate
	}
	return Intensity(index * int(IntensityExtreme) / (size - 1))
}

func (c *Catalog) knownID(id string, spectrumIDs map[string]bool) bool {
	if _, ok := c.byText[id]; ok {
		return true
	}
	return spectrumIDs[id]
}

// Categories returns category names in declaration order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// HasCategory reports whether the catalog declares the named category.
func (c *Catalog) HasCategory(name string) bool {
	_, ok := c.byCategory[name]
	return ok
}

// ModifiersFor returns the union of modifiers under the requested categories,
// preserving file-declared order within a category and request order across
// categories. Unknown categories contribute nothing.
func (c *Catalog) ModifiersFor(categories []string) []Modifier {
	var out []Modifier
	for _, name := range categories {
		out = append(out, c.byCategory[name]...)
	}
	return out
}

// ContradictionRules returns the declared contradiction pairs.
func (c *Catalog) ContradictionRules() []ContradictionRule {
	return append([]ContradictionRule(nil), c.contradictions...)
}

// ComplementaryCombinations returns declared combinations in catalog order.
func (c *Catalog) ComplementaryCombinations() []ComplementaryCombination {
	return append([]ComplementaryCombination(nil), c.combos...)
}

// DomainWeight returns the selection weight for a category under the given
// scenario domain, defaulting to 1.0 when unspecified.
func (c *Catalog) DomainWeight(domain, category string) float64 {
	if domain == "" {
		return 1.0
	}
	weights, ok := c.domainWeights[domain]
	if !ok {
		return 1.0
	}
	w, ok := weights[category]
	if !ok || w <= 0 {
		return 1.0
	}
	return w
}

// Rules returns the rule set checked by the validator.
func (c *Catalog) Rules() Rules {
	return Rules{Contradictions: c.ContradictionRules()}
}

// Lookup resolves a modifier by its display text.
func (c *Catalog) Lookup(text string) (Modifier, bool) {
	m, ok := c.byText[text]
	return m, ok
}
