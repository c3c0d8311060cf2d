package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/plotwise/garden/internal/model"
	"github.com/plotwise/garden/internal/planting"
)

type SetFrostDatesInput struct {
	LastFrost  string
	FirstFrost string
	Location   string
}

func SetFrostDates(db *sql.DB, in SetFrostDatesInput) error {
	last, err := parseDay("last frost date", in.LastFrost)
	if err != nil {
		return err
	}
	in.FirstFrost = strings.TrimSpace(in.FirstFrost)
	if in.FirstFrost != "" {
		first, err := parseDay("first frost date", in.FirstFrost)
		if err != nil {
			return err
		}
		if !first.After(last) {
			return fmt.Errorf("first frost date %s must be after last frost date %s", in.FirstFrost, strings.TrimSpace(in.LastFrost))
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin frost dates tx: %w", err)
	}
	defer tx.Rollback()

	upsert := `
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`
	if _, err := tx.Exec(upsert, ConfigLastFrost, last.Format(planting.DateLayout)); err != nil {
		return fmt.Errorf("set last frost date: %w", err)
	}
	if in.FirstFrost == "" {
		if _, err := tx.Exec(`DELETE FROM app_config WHERE key = ?`, ConfigFirstFrost); err != nil {
			return fmt.Errorf("clear first frost date: %w", err)
		}
	} else if _, err := tx.Exec(upsert, ConfigFirstFrost, in.FirstFrost); err != nil {
		return fmt.Errorf("set first frost date: %w", err)
	}
	if loc := strings.TrimSpace(in.Location); loc != "" {
		if _, err := tx.Exec(upsert, ConfigLocation, loc); err != nil {
			return fmt.Errorf("set location: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit frost dates: %w", err)
	}
	return nil
}

// CurrentFrostProfile returns nil when no last frost date is stored.
func CurrentFrostProfile(db *sql.DB) (*model.FrostProfile, error) {
	cfg, err := ListConfig(db)
	if err != nil {
		return nil, err
	}
	last := cfg[ConfigLastFrost]
	if last == "" {
		return nil, nil
	}
	return &model.FrostProfile{
		LastFrost:  last,
		FirstFrost: cfg[ConfigFirstFrost],
		Location:   cfg[ConfigLocation],
	}, nil
}

// FrostDates returns ErrFrostDatesNotSet when the stored profile has no usable
// last frost date.
func FrostDates(db *sql.DB) (planting.FrostWindow, error) {
	profile, err := CurrentFrostProfile(db)
	if err != nil {
		return planting.FrostWindow{}, err
	}
	if profile == nil {
		return planting.FrostWindow{}, ErrFrostDatesNotSet
	}
	w, ok := planting.ParseFrostWindow(profile.LastFrost, profile.FirstFrost)
	if !ok {
		return planting.FrostWindow{}, ErrFrostDatesNotSet
	}
	return w, nil
}

func ClearFrostDates(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM app_config WHERE key IN (?, ?)`, ConfigLastFrost, ConfigFirstFrost); err != nil {
		return fmt.Errorf("clear frost dates: %w", err)
	}
	return nil
}
