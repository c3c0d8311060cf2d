package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plotwise/garden/internal/planting"
)

var (
	ErrFrostDatesNotSet = errors.New("frost dates are not set")
	ErrPlantNotFound    = errors.New("plant not found")
)

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func parseDay(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse(planting.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q (expected YYYY-MM-DD)", name, value)
	}
	return t, nil
}

func defaultCategory(db *sql.DB) (string, error) {
	def, _, err := GetConfig(db, ConfigDefaultCategory)
	if err != nil {
		return "", err
	}
	return def, nil
}

func resolveCategory(category, fallback string) (string, error) {
	category = strings.TrimSpace(strings.ToLower(category))
	if category == "" {
		category = strings.TrimSpace(strings.ToLower(fallback))
	}
	if category == "" {
		category = planting.DefaultCategory
	}
	if !planting.IsKnownCategory(category) {
		return "", fmt.Errorf("unknown category %q (known: %s)", category, strings.Join(planting.Categories(), ", "))
	}
	return category, nil
}
