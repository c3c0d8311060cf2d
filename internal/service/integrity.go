package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/plotwise/garden/internal/planting"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	UnknownCategories int  `json:"unknown_categories"`
	UnparsableSpacing int  `json:"unparsable_spacing"`
	ExpiredImageCache int  `json:"expired_image_cache"`
	FrostOrderInvalid bool `json:"frost_order_invalid"`
	FixedCategoryRows int  `json:"fixed_category_rows,omitempty"`
	FixedSpacingRows  int  `json:"fixed_spacing_rows,omitempty"`
	PurgedImageCache  int  `json:"purged_image_cache_rows,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return r.UnknownCategories == 0 && r.UnparsableSpacing == 0 && r.ExpiredImageCache == 0 && !r.FrostOrderInvalid
}

// CreateBackup writes a consistent copy of the open database with VACUUM INTO
// and stores its sha256 next to it.
func CreateBackup(db *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("vacuum into backup: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// DefaultBackupName is the file name used when no output path is given.
func DefaultBackupName(now time.Time) string {
	return "garden-" + now.UTC().Format("20060102-150405") + ".db"
}

func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	expected, err := os.ReadFile(backupPath + ".sha256")
	if err != nil {
		return fmt.Errorf("read backup checksum: %w", err)
	}
	actual, err := fileSHA256(backupPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(expected)) != actual {
		return fmt.Errorf("backup checksum mismatch")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor checks the plant list, the image cache and the frost profile.
// With fix it repairs what can be repaired without user input; a frost
// profile in the wrong order is only reported.
func RunDoctor(db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}

	unknownIDs, badSpacingIDs, err := scanPlantProblems(db)
	if err != nil {
		return report, err
	}
	report.UnknownCategories = len(unknownIDs)
	report.UnparsableSpacing = len(badSpacingIDs)

	if err := db.QueryRow(`SELECT COUNT(1) FROM image_lookups WHERE expires_at < ?`, time.Now().UTC()).Scan(&report.ExpiredImageCache); err != nil {
		return report, fmt.Errorf("doctor image cache check: %w", err)
	}

	profile, err := CurrentFrostProfile(db)
	if err != nil {
		return report, err
	}
	if profile != nil && profile.FirstFrost != "" {
		last, okLast := planting.ParseDate(profile.LastFrost)
		first, okFirst := planting.ParseDate(profile.FirstFrost)
		report.FrostOrderInvalid = okLast && okFirst && !first.After(last)
	}

	if !fix {
		return report, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("doctor fix begin tx: %w", err)
	}
	for _, id := range unknownIDs {
		if _, err := tx.Exec(`UPDATE plants SET category = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, planting.DefaultCategory, id); err != nil {
			_ = tx.Rollback()
			return report, fmt.Errorf("doctor fix category row %d: %w", id, err)
		}
		report.FixedCategoryRows++
	}
	for _, id := range badSpacingIDs {
		if _, err := tx.Exec(`UPDATE plants SET row_spacing_cm = 0, plant_spacing_cm = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
			_ = tx.Rollback()
			return report, fmt.Errorf("doctor fix spacing row %d: %w", id, err)
		}
		report.FixedSpacingRows++
	}
	res, err := tx.Exec(`DELETE FROM image_lookups WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		_ = tx.Rollback()
		return report, fmt.Errorf("doctor purge image cache: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		report.PurgedImageCache = int(n)
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("doctor fix commit: %w", err)
	}
	return report, nil
}

func scanPlantProblems(db *sql.DB) (unknown, badSpacing []int64, err error) {
	rows, err := db.Query(`SELECT id, category, spacing, row_spacing_cm, plant_spacing_cm FROM plants`)
	if err != nil {
		return nil, nil, fmt.Errorf("doctor plant query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var category, spacing string
		var rowCM, plantCM float64
		if err := rows.Scan(&id, &category, &spacing, &rowCM, &plantCM); err != nil {
			return nil, nil, fmt.Errorf("doctor plant scan: %w", err)
		}
		if !planting.IsKnownCategory(category) {
			unknown = append(unknown, id)
		}
		if _, perr := ParseSpacing(spacing); perr != nil && (rowCM != 0 || plantCM != 0) {
			badSpacing = append(badSpacing, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("doctor plant iterate: %w", err)
	}
	return unknown, badSpacing, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
