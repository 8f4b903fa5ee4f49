package card

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dialoglab/convogen/pkg/modifier"
)

// Report collects validation findings for a conversation card and the files
// it references. Warnings do not block generation; errors do.
type Report struct {
	Errors   []string
	Warnings []string
}

func (r *Report) OK() bool { return len(r.Errors) == 0 }

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks a conversation card and all its dependencies without
// calling any provider, so a bad setup fails before generation starts.
func Validate(path string) *Report {
	report := &Report{}

	card, err := loadCard(path)
	if err != nil {
		report.errorf("%v", err)
		return report
	}

	dir := filepath.Dir(path)

	if len(card.Participants) != 2 {
		report.warnf("conversation card declares %d participants; the dialogue engine alternates between exactly two", len(card.Participants))
	}

	for _, id := range sortedParticipantIDs(card) {
		participant := card.Participants[id]
		if participant.PersonaFile == "" {
			report.errorf("participant %s has no persona_file", id)
			continue
		}
		if _, err := LoadPersona(resolve(dir, participant.PersonaFile)); err != nil {
			report.errorf("participant %s: %v", id, err)
		}
		if participant.ApplyModifiers && len(participant.AppliedModifiers) == 0 {
			report.warnf("participant %s enables modifiers but requests no categories", id)
		}
	}

	if card.Scenario.VignetteFile == "" {
		report.warnf("scenario has no vignette_file; personas will lack shared context")
	} else if _, err := os.Stat(resolve(dir, card.Scenario.VignetteFile)); err != nil {
		report.errorf("vignette file: %v", err)
	}

	validateModifierConfig(report, card, dir)
	return report
}

func validateModifierConfig(report *Report, card *Card, dir string) {
	mc := card.ModifierConfig
	anyModified := false
	for _, p := range card.Participants {
		if p.ApplyModifiers {
			anyModified = true
		}
	}

	if mc == nil {
		if anyModified {
			report.errorf("participants request modifiers but the card has no modifier_config")
		}
		return
	}

	if mc.PersonalityCoherence != "" {
		if _, err := modifier.PolicyFor(modifier.Level(mc.PersonalityCoherence)); err != nil {
			report.errorf("%v", err)
		}
	}
	if mc.TargetModifierCount < 0 {
		report.errorf("target_modifier_count must not be negative, got %d", mc.TargetModifierCount)
	}

	if mc.ModifiersFile == "" {
		if anyModified {
			report.errorf("modifier_config has no modifiers_file")
		}
		return
	}

	catalog, err := modifier.Load(resolve(dir, mc.ModifiersFile))
	if err != nil {
		report.errorf("%v", err)
		return
	}

	for _, id := range sortedParticipantIDs(card) {
		participant := card.Participants[id]
		if !participant.ApplyModifiers {
			continue
		}
		for _, category := range participant.AppliedModifiers {
			if !catalog.HasCategory(category) {
				report.warnf("participant %s requests category %q not present in the catalog", id, category)
			}
		}
	}
}

func sortedParticipantIDs(card *Card) []string {
	ids := make([]string, 0, len(card.Participants))
	for id := range card.Participants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
