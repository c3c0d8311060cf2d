package service

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/plotwise/garden/internal/model"
)

const catalogVersion = 1

type CatalogFormat string

const (
	CatalogYAML CatalogFormat = "yaml"
	CatalogJSON CatalogFormat = "json"
)

func ParseCatalogFormat(s string) (CatalogFormat, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", "yaml", "yml":
		return CatalogYAML, nil
	case "json":
		return CatalogJSON, nil
	default:
		return "", fmt.Errorf("unsupported catalog format %q (expected yaml or json)", s)
	}
}

type CatalogPlant struct {
	Name        string            `json:"name" yaml:"name"`
	DisplayName string            `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Category    string            `json:"category,omitempty" yaml:"category,omitempty"`
	Spacing     string            `json:"spacing,omitempty" yaml:"spacing,omitempty"`
	Notes       string            `json:"notes,omitempty" yaml:"notes,omitempty"`
	Image       *model.PlantImage `json:"image,omitempty" yaml:"image,omitempty"`
}

type Catalog struct {
	Version int            `json:"version" yaml:"version"`
	Plants  []CatalogPlant `json:"plants" yaml:"plants"`
}

type ImportMode string

const (
	ImportModeFail    ImportMode = "fail"
	ImportModeSkip    ImportMode = "skip"
	ImportModeMerge   ImportMode = "merge"
	ImportModeReplace ImportMode = "replace"
)

type ImportOptions struct {
	Format CatalogFormat
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

func ExportCatalog(db *sql.DB, w io.Writer, format CatalogFormat) error {
	plants, err := ListPlants(db, ListPlantsFilter{})
	if err != nil {
		return err
	}
	cat := Catalog{Version: catalogVersion, Plants: make([]CatalogPlant, 0, len(plants))}
	for _, p := range plants {
		cp := CatalogPlant{
			Name:        p.Name,
			DisplayName: p.DisplayName,
			Category:    p.Category,
			Spacing:     p.Spacing,
			Notes:       p.Notes,
		}
		if !p.Image.Empty() {
			img := p.Image
			cp.Image = &img
		}
		cat.Plants = append(cat.Plants, cp)
	}

	switch format {
	case CatalogJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cat); err != nil {
			return fmt.Errorf("encode json catalog: %w", err)
		}
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cat); err != nil {
			return fmt.Errorf("encode yaml catalog: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("flush yaml catalog: %w", err)
		}
	}
	return nil
}

func DecodeCatalog(r io.Reader, format CatalogFormat) (*Catalog, error) {
	var cat Catalog
	switch format {
	case CatalogJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cat); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&cat); err != nil {
			if errors.Is(err, io.EOF) {
				return &Catalog{Version: catalogVersion}, nil
			}
			return nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
	}
	if cat.Version > catalogVersion {
		return nil, fmt.Errorf("catalog version %d is newer than supported version %d", cat.Version, catalogVersion)
	}
	return &cat, nil
}

func ImportCatalog(db *sql.DB, r io.Reader, opts ImportOptions) (ImportReport, error) {
	cat, err := DecodeCatalog(r, opts.Format)
	if err != nil {
		return ImportReport{}, err
	}
	return ImportCatalogData(db, cat, opts)
}

func ImportCatalogData(db *sql.DB, cat *Catalog, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{}
	mode := normalizeImportMode(opts.Mode)

	def, err := defaultCategory(db)
	if err != nil {
		return report, err
	}
	prepared := make([]preparedPlant, 0, len(cat.Plants))
	seen := map[string]bool{}
	for i, cp := range cat.Plants {
		p, err := preparePlant(PlantInput{
			Name:        cp.Name,
			DisplayName: cp.DisplayName,
			Category:    cp.Category,
			Spacing:     cp.Spacing,
			Notes:       cp.Notes,
		}, def)
		if err != nil {
			return report, fmt.Errorf("catalog plant #%d: %w", i+1, err)
		}
		if seen[p.nameNorm] {
			report.Warnings = append(report.Warnings, fmt.Sprintf("duplicate plant %q in catalog, last one wins", p.name))
		}
		seen[p.nameNorm] = true
		prepared = append(prepared, p)
	}

	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if mode == ImportModeReplace {
		if _, err := tx.Exec(`DELETE FROM plants`); err != nil {
			return report, fmt.Errorf("clear plants for replace mode: %w", err)
		}
	}

	now := time.Now()
	for i, p := range prepared {
		var id int64
		err := tx.QueryRow(`SELECT id FROM plants WHERE name_norm = ?`, p.nameNorm).Scan(&id)
		exists := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return report, fmt.Errorf("check existing plant %q: %w", p.name, err)
		}
		if exists {
			switch mode {
			case ImportModeFail:
				return report, fmt.Errorf("plant %q already exists", p.name)
			case ImportModeSkip:
				report.Skipped++
				continue
			}
		}
		created, err := upsertPlant(tx, p)
		if err != nil {
			return report, err
		}
		if created {
			report.Inserted++
		} else {
			report.Updated++
		}
		if img := cat.Plants[i].Image; img != nil && img.URL != "" {
			if _, err := tx.Exec(`
UPDATE plants
SET image_url = ?, image_thumb_url = ?, image_author = ?, image_license = ?, image_page_url = ?, image_checked_at = ?
WHERE name_norm = ?
`, img.URL, img.ThumbURL, img.Author, img.License, img.PageURL, now.UTC(), p.nameNorm); err != nil {
				return report, fmt.Errorf("import image for %q: %w", p.name, err)
			}
		}
	}

	if opts.DryRun {
		return report, nil
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("commit import tx: %w", err)
	}
	return report, nil
}

func normalizeImportMode(mode ImportMode) ImportMode {
	switch mode {
	case ImportModeFail, ImportModeSkip, ImportModeMerge, ImportModeReplace:
		return mode
	default:
		return ImportModeMerge
	}
}
