package planting_test

import (
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/plotwise/garden/internal/planting"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(planting.DateLayout, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func findSlot(recs []planting.Recommendation, slot planting.SlotType) (planting.Recommendation, bool) {
	for _, r := range recs {
		if r.Type == slot {
			return r, true
		}
	}
	return planting.Recommendation{}, false
}

func TestCalculateWithoutLastFrostReturnsNotOK(t *testing.T) {
	t.Parallel()
	plants := []planting.Plant{
		{Name: "pomidor", Category: planting.CategoryVegetable},
		{Name: "tulipan", Category: planting.CategoryFlowerBulb},
		{},
	}
	for _, p := range plants {
		for _, last := range []string{"", "   ", "not-a-date", "2025-13-40"} {
			recs, ok := planting.Calculate(p, last, "2025-10-20")
			if ok || recs != nil {
				t.Fatalf("expected no recommendations for last=%q plant=%+v, got ok=%v recs=%v", last, p, ok, recs)
			}
		}
	}
}

func TestCalculateWindowZeroLastReturnsNotOK(t *testing.T) {
	t.Parallel()
	recs, ok := planting.CalculateWindow(planting.Plant{Category: planting.CategoryHerb}, planting.FrostWindow{First: date(t, "2025-10-20")})
	if ok || recs != nil {
		t.Fatalf("expected not ok for zero last frost, got ok=%v recs=%v", ok, recs)
	}
}

func TestPerennialWithoutFirstFrostOmitsAutumn(t *testing.T) {
	t.Parallel()
	recs, ok := planting.Calculate(planting.Plant{Name: "floks", Category: planting.CategoryFlowerPerennial}, "2025-04-15", "")
	if !ok {
		t.Fatalf("expected ok")
	}
	if _, found := findSlot(recs, planting.SlotAutumn); found {
		t.Fatalf("expected autumn slot to be omitted, got %+v", recs)
	}
	outdoor, found := findSlot(recs, planting.SlotOutdoor)
	if !found {
		t.Fatalf("expected outdoor slot, got %+v", recs)
	}
	if !outdoor.Date.Equal(date(t, "2025-04-29")) || !outdoor.IsRecommended {
		t.Fatalf("unexpected outdoor recommendation: %+v", outdoor)
	}
}

func TestInvalidFirstFrostIsTreatedAsMissing(t *testing.T) {
	t.Parallel()
	recs, ok := planting.Calculate(planting.Plant{Category: planting.CategoryFruitTree}, "2025-04-15", "someday")
	if !ok {
		t.Fatalf("expected ok")
	}
	if _, found := findSlot(recs, planting.SlotAutumn); found {
		t.Fatalf("expected autumn slot to be omitted for invalid first frost")
	}
	if len(recs) != 1 || recs[0].Type != planting.SlotSpring {
		t.Fatalf("expected only the spring slot, got %+v", recs)
	}
}

func TestAutumnSlotIsSixWeeksBeforeFirstFrost(t *testing.T) {
	t.Parallel()
	recs, ok := planting.Calculate(planting.Plant{Category: planting.CategoryFlowerPerennial}, "2025-04-15", "2025-10-20")
	if !ok {
		t.Fatalf("expected ok")
	}
	autumn, found := findSlot(recs, planting.SlotAutumn)
	if !found {
		t.Fatalf("expected autumn slot, got %+v", recs)
	}
	if !autumn.Date.Equal(date(t, "2025-09-08")) {
		t.Fatalf("expected autumn date 2025-09-08, got %s", autumn.Date.Format(planting.DateLayout))
	}
	if autumn.IsRecommended {
		t.Fatalf("autumn slot must not be recommended")
	}
}

func TestOutdoorHeuristics(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		want string
	}{
		{name: "sałata", want: "2025-04-15"},
		{name: "Sałata masłowa", want: "2025-04-15"},
		{name: "KAPUSTA biała", want: "2025-04-15"},
		{name: "pomidor", want: "2025-05-06"},
		{name: "Pomidor koktajlowy", want: "2025-05-06"},
		{name: "ogórek gruntowy", want: "2025-05-06"},
		{name: "seler", want: "2025-04-29"},
	}
	for _, tc := range cases {
		recs, ok := planting.Calculate(planting.Plant{Name: tc.name, Category: planting.CategoryVegetable}, "2025-04-15", "")
		if !ok {
			t.Fatalf("%s: expected ok", tc.name)
		}
		outdoor, found := findSlot(recs, planting.SlotOutdoor)
		if !found {
			t.Fatalf("%s: expected outdoor slot", tc.name)
		}
		if got := outdoor.Date.Format(planting.DateLayout); got != tc.want {
			t.Fatalf("%s: expected outdoor %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestHeuristicsOnlyShiftOutdoorSlot(t *testing.T) {
	t.Parallel()
	recs, ok := planting.Calculate(planting.Plant{Name: "pomidor", Category: planting.CategoryVegetable}, "2025-04-15", "")
	if !ok {
		t.Fatalf("expected ok")
	}
	indoor, _ := findSlot(recs, planting.SlotIndoor)
	if got := indoor.Date.Format(planting.DateLayout); got != "2025-02-18" {
		t.Fatalf("expected unshifted indoor date 2025-02-18, got %s", got)
	}
	sow, _ := findSlot(recs, planting.SlotDirectSow)
	if got := sow.Date.Format(planting.DateLayout); got != "2025-04-15" {
		t.Fatalf("expected unshifted direct sow date 2025-04-15, got %s", got)
	}
}

func TestDisplayNameUsedWhenNameEmpty(t *testing.T) {
	t.Parallel()
	recs, _ := planting.Calculate(planting.Plant{DisplayName: "Papryka słodka", Category: planting.CategoryVegetable}, "2025-04-15", "")
	outdoor, _ := findSlot(recs, planting.SlotOutdoor)
	if got := outdoor.Date.Format(planting.DateLayout); got != "2025-05-06" {
		t.Fatalf("expected warm-loving shift from display name, got %s", got)
	}
}

func TestNameAdjustmentPrefersColdHardyList(t *testing.T) {
	t.Parallel()
	weeks, kind := planting.NameAdjustment("cebula i pomidor")
	if weeks != -2 || kind != "cold-hardy" {
		t.Fatalf("expected cold-hardy to win, got %d %q", weeks, kind)
	}
	if weeks, kind := planting.NameAdjustment("lawenda"); weeks != 0 || kind != "" {
		t.Fatalf("expected no adjustment, got %d %q", weeks, kind)
	}
}

func TestBulbSpringSlotUsesPreviousOctober(t *testing.T) {
	t.Parallel()
	for _, first := range []string{"", "2025-10-20"} {
		recs, ok := planting.Calculate(planting.Plant{Name: "tulipan", Category: planting.CategoryFlowerBulb}, "2025-04-15", first)
		if !ok {
			t.Fatalf("expected ok")
		}
		spring, found := findSlot(recs, planting.SlotSpring)
		if !found {
			t.Fatalf("expected spring slot with first=%q", first)
		}
		if !spring.Date.Equal(date(t, "2024-10-15")) {
			t.Fatalf("expected 2024-10-15, got %s", spring.Date.Format(planting.DateLayout))
		}
		if spring.Note != "październik-listopad poprzedniego roku" {
			t.Fatalf("unexpected note %q", spring.Note)
		}
		if spring.IsRecommended {
			t.Fatalf("bulb spring slot must not be recommended")
		}
		if recs[0].Type != planting.SlotSpring {
			t.Fatalf("expected spring slot first after sorting, got %+v", recs)
		}
	}
}

func TestFrostRelativeSpringIsRecommended(t *testing.T) {
	t.Parallel()
	recs, _ := planting.Calculate(planting.Plant{Name: "jabłoń", Category: planting.CategoryFruitTree}, "2025-04-15", "")
	spring, found := findSlot(recs, planting.SlotSpring)
	if !found || !spring.IsRecommended {
		t.Fatalf("expected recommended spring slot, got %+v", recs)
	}
}

func TestUnknownCategoryFallsBackToVegetable(t *testing.T) {
	t.Parallel()
	want, _ := planting.Calculate(planting.Plant{Name: "seler", Category: planting.CategoryVegetable}, "2025-04-15", "")
	for _, category := range []string{"", "cactus", "VEGETABLE"} {
		got, ok := planting.Calculate(planting.Plant{Name: "seler", Category: category}, "2025-04-15", "")
		if !ok {
			t.Fatalf("expected ok for category %q", category)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("category %q should match vegetable profile (-want +got):\n%s", category, diff)
		}
	}
}

func TestEveryCategoryIsSortedAndFrostRelativeOnesAreNonEmpty(t *testing.T) {
	t.Parallel()
	for _, category := range planting.Categories() {
		for _, first := range []string{"", "2025-10-01"} {
			recs, ok := planting.Calculate(planting.Plant{Name: "x", Category: category}, "2025-04-15", first)
			if !ok {
				t.Fatalf("%s: expected ok", category)
			}
			if recs == nil {
				t.Fatalf("%s: expected non-nil slice", category)
			}
			hasFrostRelative := false
			for _, s := range planting.ProfileFor(category) {
				if s.FrostRelative() {
					hasFrostRelative = true
				}
			}
			if hasFrostRelative && len(recs) == 0 {
				t.Fatalf("%s: expected recommendations", category)
			}
			if !sort.SliceIsSorted(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) }) {
				t.Fatalf("%s: recommendations not sorted: %+v", category, recs)
			}
		}
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	t.Parallel()
	p := planting.Plant{Name: "tulipan", Category: planting.CategoryFlowerBulb}
	a, okA := planting.Calculate(p, "2025-04-15", "2025-10-20")
	b, okB := planting.Calculate(p, "2025-04-15", "2025-10-20")
	if okA != okB {
		t.Fatalf("ok mismatch")
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("repeated calls differ (-first +second):\n%s", diff)
	}
}

func TestParseDateAcceptsTimestamps(t *testing.T) {
	t.Parallel()
	got, ok := planting.ParseDate("2025-04-15T22:30:00+02:00")
	if !ok {
		t.Fatalf("expected timestamp to parse")
	}
	if !got.Equal(date(t, "2025-04-15")) {
		t.Fatalf("expected calendar day 2025-04-15, got %s", got)
	}
}

func TestProfileForReturnsCopy(t *testing.T) {
	t.Parallel()
	p := planting.ProfileFor(planting.CategoryVegetable)
	*p[0].Weeks = 99
	p[0].Label = "changed"
	again := planting.ProfileFor(planting.CategoryVegetable)
	if *again[0].Weeks == 99 || again[0].Label == "changed" {
		t.Fatalf("profile table was mutated through returned copy")
	}
}
