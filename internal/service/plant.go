package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plotwise/garden/internal/model"
)

type PlantInput struct {
	Name        string
	DisplayName string
	Category    string
	Spacing     string
	Notes       string
}

type preparedPlant struct {
	name, nameNorm, displayName, category, spacingText, notes string
	spacing                                                   Spacing
}

type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func preparePlant(in PlantInput, fallbackCategory string) (preparedPlant, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return preparedPlant{}, fmt.Errorf("plant name is required")
	}
	category, err := resolveCategory(in.Category, fallbackCategory)
	if err != nil {
		return preparedPlant{}, err
	}
	spacing, err := ParseSpacing(in.Spacing)
	if err != nil {
		return preparedPlant{}, err
	}
	return preparedPlant{
		name:        name,
		nameNorm:    normalizeName(name),
		displayName: strings.TrimSpace(in.DisplayName),
		category:    category,
		spacingText: strings.TrimSpace(in.Spacing),
		notes:       strings.TrimSpace(in.Notes),
		spacing:     spacing,
	}, nil
}

func AddPlant(db *sql.DB, in PlantInput) (int64, error) {
	def, err := defaultCategory(db)
	if err != nil {
		return 0, err
	}
	p, err := preparePlant(in, def)
	if err != nil {
		return 0, err
	}
	return insertPlant(db, p)
}

func insertPlant(db dbtx, p preparedPlant) (int64, error) {
	res, err := db.Exec(`
INSERT INTO plants(name, name_norm, display_name, category, spacing, row_spacing_cm, plant_spacing_cm, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
`, p.name, p.nameNorm, p.displayName, p.category, p.spacingText, p.spacing.RowCM, p.spacing.PlantCM, p.notes)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, fmt.Errorf("plant %q already exists", p.name)
		}
		return 0, fmt.Errorf("insert plant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted plant id: %w", err)
	}
	return id, nil
}

// UpsertPlant inserts or replaces the plant with the same normalised name and
// reports whether a new row was created.
func UpsertPlant(db *sql.DB, in PlantInput) (bool, error) {
	def, err := defaultCategory(db)
	if err != nil {
		return false, err
	}
	p, err := preparePlant(in, def)
	if err != nil {
		return false, err
	}
	return upsertPlant(db, p)
}

func upsertPlant(db dbtx, p preparedPlant) (bool, error) {
	var existing int64
	err := db.QueryRow(`SELECT id FROM plants WHERE name_norm = ?`, p.nameNorm).Scan(&existing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("lookup plant %q: %w", p.name, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := insertPlant(db, p); err != nil {
			return false, err
		}
		return true, nil
	}
	_, err = db.Exec(`
UPDATE plants
SET name = ?, display_name = ?, category = ?, spacing = ?, row_spacing_cm = ?, plant_spacing_cm = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, p.name, p.displayName, p.category, p.spacingText, p.spacing.RowCM, p.spacing.PlantCM, p.notes, existing)
	if err != nil {
		return false, fmt.Errorf("update plant %q: %w", p.name, err)
	}
	return false, nil
}

type ListPlantsFilter struct {
	Category     string
	MissingImage bool
	Limit        int
}

const plantColumns = `id, name, name_norm, display_name, category, spacing, row_spacing_cm, plant_spacing_cm, notes,
image_url, image_thumb_url, image_author, image_license, image_page_url, image_checked_at, created_at, updated_at`

func ListPlants(db *sql.DB, filter ListPlantsFilter) ([]model.Plant, error) {
	query := `SELECT ` + plantColumns + ` FROM plants WHERE 1=1`
	args := make([]any, 0, 2)
	if c := strings.TrimSpace(strings.ToLower(filter.Category)); c != "" {
		query += ` AND category = ?`
		args = append(args, c)
	}
	if filter.MissingImage {
		query += ` AND image_url = ''`
	}
	query += ` ORDER BY name_norm ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	defer rows.Close()

	out := make([]model.Plant, 0)
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plant: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plants: %w", err)
	}
	return out, nil
}

func PlantByName(db *sql.DB, name string) (model.Plant, error) {
	norm := normalizeName(name)
	if norm == "" {
		return model.Plant{}, fmt.Errorf("plant name is required")
	}
	row := db.QueryRow(`SELECT `+plantColumns+` FROM plants WHERE name_norm = ?`, norm)
	p, err := scanPlant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Plant{}, fmt.Errorf("%w: %q", ErrPlantNotFound, strings.TrimSpace(name))
	}
	if err != nil {
		return model.Plant{}, fmt.Errorf("lookup plant %q: %w", name, err)
	}
	return p, nil
}

func RemovePlant(db *sql.DB, name string) error {
	norm := normalizeName(name)
	res, err := db.Exec(`DELETE FROM plants WHERE name_norm = ?`, norm)
	if err != nil {
		return fmt.Errorf("delete plant %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete plant rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrPlantNotFound, strings.TrimSpace(name))
	}
	return nil
}

func setPlantImage(db *sql.DB, id int64, img model.PlantImage, checkedAt time.Time) error {
	_, err := db.Exec(`
UPDATE plants
SET image_url = ?, image_thumb_url = ?, image_author = ?, image_license = ?, image_page_url = ?, image_checked_at = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, img.URL, img.ThumbURL, img.Author, img.License, img.PageURL, checkedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("set plant image: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlant(s rowScanner) (model.Plant, error) {
	var p model.Plant
	var checked sql.NullTime
	err := s.Scan(
		&p.ID, &p.Name, &p.NameNorm, &p.DisplayName, &p.Category, &p.Spacing, &p.RowSpacingCM, &p.PlantSpacingCM, &p.Notes,
		&p.Image.URL, &p.Image.ThumbURL, &p.Image.Author, &p.Image.License, &p.Image.PageURL, &checked, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return model.Plant{}, err
	}
	if checked.Valid {
		t := checked.Time
		p.ImageCheckedAt = &t
	}
	return p, nil
}
