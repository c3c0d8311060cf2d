package service

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/plotwise/garden/internal/model"
	"github.com/plotwise/garden/internal/planting"
)

type CalendarOptions struct {
	Plant           string
	Category        string
	From            string
	To              string
	OnlyRecommended bool
}

type CalendarEntry struct {
	Plant          string                  `json:"plant"`
	Category       string                  `json:"category"`
	Recommendation planting.Recommendation `json:"recommendation"`
}

func PlantingInput(p model.Plant) planting.Plant {
	return planting.Plant{Name: p.Name, DisplayName: p.DisplayName, Category: p.Category}
}

// PlantDates returns ErrFrostDatesNotSet when the user has not configured a
// last frost date yet.
func PlantDates(db *sql.DB, name string) (model.Plant, []planting.Recommendation, error) {
	window, err := FrostDates(db)
	if err != nil {
		return model.Plant{}, nil, err
	}
	p, err := PlantByName(db, name)
	if err != nil {
		return model.Plant{}, nil, err
	}
	recs, ok := planting.CalculateWindow(PlantingInput(p), window)
	if !ok {
		return model.Plant{}, nil, ErrFrostDatesNotSet
	}
	return p, recs, nil
}

func BuildCalendar(db *sql.DB, opts CalendarOptions) ([]CalendarEntry, error) {
	from, to, err := calendarRange(opts.From, opts.To)
	if err != nil {
		return nil, err
	}
	window, err := FrostDates(db)
	if err != nil {
		return nil, err
	}

	var plants []model.Plant
	if strings.TrimSpace(opts.Plant) != "" {
		p, err := PlantByName(db, opts.Plant)
		if err != nil {
			return nil, err
		}
		plants = []model.Plant{p}
	} else {
		plants, err = ListPlants(db, ListPlantsFilter{Category: opts.Category})
		if err != nil {
			return nil, err
		}
	}

	out := make([]CalendarEntry, 0, len(plants)*3)
	for _, p := range plants {
		recs, ok := planting.CalculateWindow(PlantingInput(p), window)
		if !ok {
			return nil, ErrFrostDatesNotSet
		}
		for _, r := range recs {
			if opts.OnlyRecommended && !r.IsRecommended {
				continue
			}
			if !from.IsZero() && r.Date.Before(from) {
				continue
			}
			if !to.IsZero() && r.Date.After(to) {
				continue
			}
			out = append(out, CalendarEntry{Plant: p.Label(), Category: p.Category, Recommendation: r})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Recommendation.Date, out[j].Recommendation.Date
		if !a.Equal(b) {
			return a.Before(b)
		}
		return out[i].Plant < out[j].Plant
	})
	return out, nil
}

func calendarRange(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if strings.TrimSpace(from) != "" {
		if start, err = parseDay("from date", from); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if strings.TrimSpace(to) != "" {
		if end, err = parseDay("to date", to); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date %s is before from date %s", strings.TrimSpace(to), strings.TrimSpace(from))
	}
	return start, end, nil
}
