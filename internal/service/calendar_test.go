package service_test

import (
	"errors"
	"testing"

	"github.com/plotwise/garden/internal/planting"
	"github.com/plotwise/garden/internal/service"
)

func TestBuildCalendarRequiresFrostDates(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	mustAddPlant(t, db, service.PlantInput{Name: "pomidor"})

	if _, err := service.BuildCalendar(db, service.CalendarOptions{}); !errors.Is(err, service.ErrFrostDatesNotSet) {
		t.Fatalf("expected ErrFrostDatesNotSet, got %v", err)
	}
	if _, _, err := service.PlantDates(db, "pomidor"); !errors.Is(err, service.ErrFrostDatesNotSet) {
		t.Fatalf("expected ErrFrostDatesNotSet, got %v", err)
	}
}

func TestBuildCalendarSortsAndFilters(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	if err := service.SetFrostDates(db, service.SetFrostDatesInput{LastFrost: "2025-04-15", FirstFrost: "2025-10-20"}); err != nil {
		t.Fatalf("set frost dates: %v", err)
	}
	mustAddPlant(t, db, service.PlantInput{Name: "pomidor"})
	mustAddPlant(t, db, service.PlantInput{Name: "tulipan", Category: "flower_bulb"})
	mustAddPlant(t, db, service.PlantInput{Name: "floks", Category: "flower_perennial"})

	all, err := service.BuildCalendar(db, service.CalendarOptions{})
	if err != nil {
		t.Fatalf("build calendar: %v", err)
	}
	// pomidor 3 + tulipan 2 + floks 3
	if len(all) != 8 {
		t.Fatalf("expected 8 entries, got %d: %+v", len(all), all)
	}
	if all[0].Plant != "tulipan" || all[0].Recommendation.Date.Format(planting.DateLayout) != "2024-10-15" {
		t.Fatalf("expected bulb autumn planting first, got %+v", all[0])
	}
	for i := 1; i < len(all); i++ {
		if all[i].Recommendation.Date.Before(all[i-1].Recommendation.Date) {
			t.Fatalf("calendar not sorted at %d: %+v", i, all)
		}
	}

	recommended, err := service.BuildCalendar(db, service.CalendarOptions{OnlyRecommended: true, From: "2025-04-01", To: "2025-05-31"})
	if err != nil {
		t.Fatalf("build filtered calendar: %v", err)
	}
	got := make([]string, 0, len(recommended))
	for _, e := range recommended {
		got = append(got, e.Plant+" "+e.Recommendation.Date.Format(planting.DateLayout))
	}
	want := []string{"floks 2025-04-29", "tulipan 2025-04-22", "pomidor 2025-05-06"}
	if len(got) != 3 {
		t.Fatalf("expected 3 recommended entries, got %v", got)
	}
	seen := map[string]bool{}
	for _, g := range got {
		seen[g] = true
	}
	for _, w := range want {
		if !seen[w] {
			t.Fatalf("missing %q in %v", w, got)
		}
	}
	if got[0] != "tulipan 2025-04-22" {
		t.Fatalf("expected tulipan first, got %v", got)
	}

	single, err := service.BuildCalendar(db, service.CalendarOptions{Plant: "POMIDOR"})
	if err != nil {
		t.Fatalf("single plant calendar: %v", err)
	}
	if len(single) != 3 {
		t.Fatalf("expected 3 entries for pomidor, got %+v", single)
	}
	if _, err := service.BuildCalendar(db, service.CalendarOptions{From: "2025-06-01", To: "2025-05-01"}); err == nil {
		t.Fatalf("expected reversed range error")
	}
}

func TestPlantDates(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	if err := service.SetFrostDates(db, service.SetFrostDatesInput{LastFrost: "2025-04-15"}); err != nil {
		t.Fatalf("set frost dates: %v", err)
	}
	mustAddPlant(t, db, service.PlantInput{Name: "sałata"})

	p, recs, err := service.PlantDates(db, "Sałata")
	if err != nil {
		t.Fatalf("plant dates: %v", err)
	}
	if p.Name != "sałata" || len(recs) != 3 {
		t.Fatalf("unexpected result %+v %+v", p, recs)
	}
	for _, r := range recs {
		if r.Type == planting.SlotOutdoor && r.Date.Format(planting.DateLayout) != "2025-04-15" {
			t.Fatalf("expected cold-hardy outdoor date 2025-04-15, got %s", r.Date.Format(planting.DateLayout))
		}
	}
	if _, _, err := service.PlantDates(db, "ogórek"); !errors.Is(err, service.ErrPlantNotFound) {
		t.Fatalf("expected ErrPlantNotFound, got %v", err)
	}
}
