package service_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/plotwise/garden/internal/db"
	"github.com/plotwise/garden/internal/service"
)

func TestDoctorDetectsAndFixesProblems(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	mustAddPlant(t, sqldb, service.PlantInput{Name: "pomidor", Spacing: "70x50"})
	if _, err := sqldb.Exec(`INSERT INTO plant_categories(name) VALUES('cactus')`); err != nil {
		t.Fatalf("insert legacy category: %v", err)
	}
	if _, err := sqldb.Exec(`INSERT INTO plants(name, name_norm, category, spacing, row_spacing_cm, plant_spacing_cm) VALUES('opuncja', 'opuncja', 'cactus', 'wide', 30, 30)`); err != nil {
		t.Fatalf("insert broken plant: %v", err)
	}
	expired := time.Now().UTC().Add(-time.Hour)
	if _, err := sqldb.Exec(`INSERT INTO image_lookups(query_norm, found, fetched_at, expires_at) VALUES('stare', 0, ?, ?)`, expired.Add(-24*time.Hour), expired); err != nil {
		t.Fatalf("insert expired cache row: %v", err)
	}
	if _, err := sqldb.Exec(`INSERT INTO app_config(key, value) VALUES(?, '2025-04-15'), (?, '2025-04-01')`, service.ConfigLastFrost, service.ConfigFirstFrost); err != nil {
		t.Fatalf("insert inverted frost profile: %v", err)
	}

	report, err := service.RunDoctor(sqldb, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report.UnknownCategories != 1 || report.UnparsableSpacing != 1 || report.ExpiredImageCache != 1 || !report.FrostOrderInvalid {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Healthy() {
		t.Fatalf("report should not be healthy")
	}

	fixed, err := service.RunDoctor(sqldb, true)
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if fixed.FixedCategoryRows != 1 || fixed.FixedSpacingRows != 1 || fixed.PurgedImageCache != 1 {
		t.Fatalf("unexpected fix report %+v", fixed)
	}

	after, err := service.RunDoctor(sqldb, false)
	if err != nil {
		t.Fatalf("doctor after fix: %v", err)
	}
	if after.UnknownCategories != 0 || after.UnparsableSpacing != 0 || after.ExpiredImageCache != 0 {
		t.Fatalf("expected repaired database, got %+v", after)
	}
	if !after.FrostOrderInvalid {
		t.Fatalf("frost order is reported, not fixed")
	}
	p, err := service.PlantByName(sqldb, "opuncja")
	if err != nil {
		t.Fatalf("plant by name: %v", err)
	}
	if p.Category != "vegetable" || p.RowSpacingCM != 0 {
		t.Fatalf("unexpected repaired plant %+v", p)
	}
}

func TestBackupCreateListRestore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	sqldb := newTestDB(t)
	defer sqldb.Close()
	mustAddPlant(t, sqldb, service.PlantInput{Name: "czosnek"})

	backupDir := filepath.Join(dir, "backups")
	out := filepath.Join(backupDir, service.DefaultBackupName(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)))
	if !strings.HasSuffix(out, "garden-20250301-080000.db") {
		t.Fatalf("unexpected backup name %s", out)
	}
	info, err := service.CreateBackup(sqldb, out)
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if info.Checksum == "" || info.SizeBytes == 0 {
		t.Fatalf("unexpected backup info %+v", info)
	}
	if _, err := service.CreateBackup(sqldb, out); err == nil {
		t.Fatalf("expected error when backup already exists")
	}

	list, err := service.ListBackups(backupDir)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(list) != 1 || list[0].Checksum != info.Checksum {
		t.Fatalf("unexpected backup list %+v", list)
	}
	empty, err := service.ListBackups(filepath.Join(dir, "missing"))
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list for missing dir, got %+v err=%v", empty, err)
	}

	restored := filepath.Join(dir, "restored.db")
	if err := service.RestoreBackup(out, restored, false); err != nil {
		t.Fatalf("restore backup: %v", err)
	}
	if err := service.RestoreBackup(out, restored, false); err == nil {
		t.Fatalf("expected restore to refuse overwriting without force")
	}
	rdb, err := db.Open(restored)
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	defer rdb.Close()
	if _, err := service.PlantByName(rdb, "czosnek"); err != nil {
		t.Fatalf("restored db missing plant: %v", err)
	}
}

func TestRestoreBackupRejectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	out := filepath.Join(dir, "b.db")
	if _, err := service.CreateBackup(sqldb, out); err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if err := os.WriteFile(out+".sha256", []byte("deadbeef\n"), 0o644); err != nil {
		t.Fatalf("tamper checksum: %v", err)
	}
	err := service.RestoreBackup(out, filepath.Join(dir, "r.db"), true)
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}
