package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type Spacing struct {
	RowCM   float64 `json:"row_cm"`
	PlantCM float64 `json:"plant_cm"`
}

func (s Spacing) IsZero() bool {
	return s.RowCM == 0 && s.PlantCM == 0
}

func (s Spacing) String() string {
	if s.IsZero() {
		return ""
	}
	return fmt.Sprintf("%sx%s cm", formatCM(s.RowCM), formatCM(s.PlantCM))
}

// PlantsPerM2 is the planting density implied by the spacing.
func (s Spacing) PlantsPerM2() float64 {
	if s.RowCM <= 0 || s.PlantCM <= 0 {
		return 0
	}
	return 10000 / (s.RowCM * s.PlantCM)
}

var spacingUnitToCM = map[string]float64{
	"mm": 0.1,
	"cm": 1,
	"m":  100,
}

const spacingDim = `(\d+(?:\.\d+)?)(?:\s*-\s*(\d+(?:\.\d+)?))?\s*(mm|cm|m)?`

var spacingPattern = regexp.MustCompile(`^` + spacingDim + `(?:\s*x\s*` + spacingDim + `)?$`)

var spacingReplacer = strings.NewReplacer(
	"×", "x",
	"*", "x",
	" na ", " x ",
	",", ".",
)

// ParseSpacing reads strings like "50x60 cm", "30 cm", "30-40 cm" or
// "0,5 x 0,6 m". The first dimension is the distance between rows, the second
// between plants in a row; a single value applies to both. Ranges resolve to
// their midpoint and a missing unit means centimetres.
func ParseSpacing(raw string) (Spacing, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return Spacing{}, nil
	}
	s = spacingReplacer.Replace(s)

	m := spacingPattern.FindStringSubmatch(s)
	if m == nil {
		return Spacing{}, fmt.Errorf("invalid spacing %q (expected e.g. \"50x60 cm\")", raw)
	}

	rowUnit, plantUnit := m[3], m[6]
	if rowUnit == "" {
		rowUnit = plantUnit
	}
	if plantUnit == "" {
		plantUnit = rowUnit
	}

	row, err := spacingValue(m[1], m[2], rowUnit)
	if err != nil {
		return Spacing{}, fmt.Errorf("invalid spacing %q: %w", raw, err)
	}
	plant := row
	if m[4] != "" {
		plant, err = spacingValue(m[4], m[5], plantUnit)
		if err != nil {
			return Spacing{}, fmt.Errorf("invalid spacing %q: %w", raw, err)
		}
	}
	return Spacing{RowCM: row, PlantCM: plant}, nil
}

func spacingValue(lo, hi, unit string) (float64, error) {
	v, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return 0, err
	}
	if hi != "" {
		upper, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return 0, err
		}
		if upper < v {
			return 0, fmt.Errorf("range %s-%s is reversed", lo, hi)
		}
		v = (v + upper) / 2
	}
	if unit == "" {
		unit = "cm"
	}
	v *= spacingUnitToCM[unit]
	if v <= 0 {
		return 0, fmt.Errorf("spacing must be > 0")
	}
	return math.Round(v*10) / 10, nil
}

func formatCM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
