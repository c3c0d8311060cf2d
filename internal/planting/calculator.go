// Package planting turns a plant's category and a location's frost dates into
// dated planting recommendations. Everything here is pure: no I/O and no
// shared mutable state.
package planting

import (
	"sort"
	"strings"
	"time"
)

const (
	bulbSpringNote = "październik-listopad poprzedniego roku"

	autumnLeadDays = 42
)

type Plant struct {
	Name        string
	DisplayName string
	Category    string
}

func (p Plant) heuristicName() string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = strings.TrimSpace(p.DisplayName)
	}
	return strings.ToLower(name)
}

type Recommendation struct {
	Type          SlotType  `json:"type"`
	Label         string    `json:"label"`
	Date          time.Time `json:"date"`
	IsRecommended bool      `json:"isRecommended"`
	Note          string    `json:"note,omitempty"`
}

type nameAdjustment struct {
	kind     string
	keywords []string
	weeks    int
}

// Checked in order; the first matching list wins.
var outdoorAdjustments = []nameAdjustment{
	{
		kind:     "cold-hardy",
		keywords: []string{"groch", "sałata", "szpinak", "rzodkiewka", "marchew", "cebula", "czosnek", "bob", "kapusta", "brokuł", "kalafior"},
		weeks:    -2,
	},
	{
		kind:     "warm-loving",
		keywords: []string{"pomidor", "papryka", "ogórek", "dynia", "cukinia", "bakłażan", "fasola", "kukurydza"},
		weeks:    1,
	},
}

// NameAdjustment reports the outdoor week shift applied for a plant name and
// the heuristic group that matched, if any.
func NameAdjustment(name string) (weeks int, kind string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0, ""
	}
	for _, adj := range outdoorAdjustments {
		for _, kw := range adj.keywords {
			if strings.Contains(name, kw) {
				return adj.weeks, adj.kind
			}
		}
	}
	return 0, ""
}

// Calculate parses the frost dates and returns the plant's recommendations
// sorted by date. ok is false when lastFrost is missing or unparsable; callers
// should ask for frost dates rather than treat it as a failure. An unusable
// firstFrost only drops the autumn slots.
func Calculate(plant Plant, lastFrost, firstFrost string) ([]Recommendation, bool) {
	w, ok := ParseFrostWindow(lastFrost, firstFrost)
	if !ok {
		return nil, false
	}
	return CalculateWindow(plant, w)
}

// CalculateWindow is Calculate over already parsed dates. A zero w.Last
// yields ok == false. When ok the slice is non-nil.
func CalculateWindow(plant Plant, w FrostWindow) ([]Recommendation, bool) {
	if w.Last.IsZero() {
		return nil, false
	}
	last := civilDate(w.Last)
	var first time.Time
	if w.HasFirst() {
		first = civilDate(w.First)
	}

	category := ResolveCategory(plant.Category)
	out := make([]Recommendation, 0, len(timingProfiles[category]))
	for _, slot := range timingProfiles[category] {
		if slot.FrostRelative() {
			n := *slot.Weeks
			if slot.Type == SlotOutdoor {
				shift, _ := NameAdjustment(plant.heuristicName())
				n += shift
			}
			out = append(out, Recommendation{
				Type:          slot.Type,
				Label:         slot.Label,
				Date:          addWeeks(last, n),
				IsRecommended: slot.Type == SlotOutdoor || slot.Type == SlotSpring,
			})
			continue
		}

		switch {
		case slot.Type == SlotAutumn:
			if first.IsZero() {
				continue
			}
			out = append(out, Recommendation{
				Type:  slot.Type,
				Label: slot.Label,
				Date:  first.AddDate(0, 0, -autumnLeadDays),
			})
		case slot.Type == SlotSpring && category == CategoryFlowerBulb:
			out = append(out, Recommendation{
				Type:  slot.Type,
				Label: slot.Label,
				Date:  time.Date(last.Year()-1, time.October, 15, 0, 0, 0, 0, time.UTC),
				Note:  bulbSpringNote,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, true
}
