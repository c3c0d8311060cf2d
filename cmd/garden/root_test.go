package garden

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runCLI executes rootCmd in-process. Flag values are reset first because
// cobra keeps them on the package-level commands between runs.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("garden %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return filepath.Join(dir, "garden.db")
}

func TestRootHelp(t *testing.T) {
	isolateEnv(t)
	out := mustRun(t, "--help")
	if !strings.Contains(out, "calendar") || !strings.Contains(out, "frost") {
		t.Fatalf("expected help to list commands, got:\n%s", out)
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	path := isolateEnv(t)
	for i := 0; i < 2; i++ {
		out := mustRun(t, "--db", path, "init")
		if !strings.Contains(out, "schema v2") {
			t.Fatalf("init run %d: unexpected output %q", i+1, out)
		}
	}
}

func TestDatesIsStoreFree(t *testing.T) {
	isolateEnv(t)
	out := mustRun(t, "dates", "--category", "vegetable", "--name", "pomidor", "--last-frost", "2025-04-15", "--json")
	var recs []struct {
		Type          string `json:"type"`
		Date          string `json:"date"`
		IsRecommended bool   `json:"isRecommended"`
	}
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("decode dates json: %v\n%s", err, out)
	}
	if len(recs) != 3 || recs[2].Type != "outdoor" || !strings.HasPrefix(recs[2].Date, "2025-05-06") || !recs[2].IsRecommended {
		t.Fatalf("unexpected recommendations %+v", recs)
	}

	out = mustRun(t, "dates", "--category", "herb")
	if !strings.Contains(out, "--last-frost") {
		t.Fatalf("expected prompt for missing last frost, got %q", out)
	}
}

func TestCalendarWorkflow(t *testing.T) {
	path := isolateEnv(t)

	out := mustRun(t, "--db", path, "calendar")
	if !strings.Contains(out, "garden frost set") {
		t.Fatalf("expected frost prompt, got %q", out)
	}

	mustRun(t, "--db", path, "frost", "set", "--last", "2025-04-15", "--first", "2025-10-20", "--location", "Kraków")
	out = mustRun(t, "--db", path, "frost", "show")
	if !strings.Contains(out, "Last frost: 2025-04-15") || !strings.Contains(out, "Location: Kraków") {
		t.Fatalf("unexpected frost show output %q", out)
	}

	mustRun(t, "--db", path, "plant", "add", "pomidor", "--spacing", "70x50 cm")
	mustRun(t, "--db", path, "plant", "add", "tulipan", "--category", "flower_bulb")
	if _, err := runCLI(t, "--db", path, "plant", "add", "kaktus", "--category", "cactus"); err == nil {
		t.Fatalf("expected unknown category to fail")
	}

	out = mustRun(t, "--db", path, "plant", "list")
	if !strings.Contains(out, "pomidor\tvegetable\t70x50 cm") {
		t.Fatalf("unexpected plant list %q", out)
	}

	out = mustRun(t, "--db", path, "calendar", "--recommended", "--json")
	var entries []struct {
		Plant          string `json:"plant"`
		Recommendation struct {
			Date string `json:"date"`
		} `json:"recommendation"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode calendar json: %v\n%s", err, out)
	}
	if len(entries) != 2 || entries[0].Plant != "tulipan" || entries[1].Plant != "pomidor" {
		t.Fatalf("unexpected calendar %+v", entries)
	}

	out = mustRun(t, "--db", path, "plant", "show", "tulipan")
	if !strings.Contains(out, "2024-10-15") || !strings.Contains(out, "poprzedniego roku") {
		t.Fatalf("expected bulb autumn planting in show output, got %q", out)
	}

	mustRun(t, "--db", path, "plant", "remove", "tulipan")
	if _, err := runCLI(t, "--db", path, "plant", "show", "tulipan"); err == nil {
		t.Fatalf("expected removed plant to be missing")
	}

	mustRun(t, "--db", path, "frost", "clear")
	out = mustRun(t, "--db", path, "plant", "show", "pomidor")
	if !strings.Contains(out, "garden frost set") {
		t.Fatalf("expected prompt after clearing frost dates, got %q", out)
	}
}

func TestCatalogImportExportCommands(t *testing.T) {
	path := isolateEnv(t)
	dir := filepath.Dir(path)

	catalog := filepath.Join(dir, "plants.yaml")
	body := "version: 1\nplants:\n  - name: bazylia\n    category: herb\n  - name: marchew\n    spacing: 25x4\n"
	if err := os.WriteFile(catalog, []byte(body), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	out := mustRun(t, "--db", path, "plant", "import", "--file", catalog, "--dry-run")
	if !strings.Contains(out, "inserted=2") || !strings.Contains(out, "Dry run") {
		t.Fatalf("unexpected dry run output %q", out)
	}
	out = mustRun(t, "--db", path, "plant", "list", "--json")
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("dry run should not write, got %q", out)
	}

	mustRun(t, "--db", path, "plant", "import", "--file", catalog)
	exported := filepath.Join(dir, "out.json")
	mustRun(t, "--db", path, "plant", "export", "--file", exported)
	raw, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(raw), `"name": "bazylia"`) || !strings.Contains(string(raw), `"spacing": "25x4"`) {
		t.Fatalf("unexpected export %s", raw)
	}
}

func TestConfigDoctorAndBackup(t *testing.T) {
	path := isolateEnv(t)

	mustRun(t, "--db", path, "config", "set", "--default-category", "herb")
	out := mustRun(t, "--db", path, "config", "get", "default_category")
	if strings.TrimSpace(out) != "herb" {
		t.Fatalf("unexpected config value %q", out)
	}
	if _, err := runCLI(t, "--db", path, "config", "set"); err == nil {
		t.Fatalf("expected config set without flags to fail")
	}

	mustRun(t, "--db", path, "plant", "add", "koper")
	out = mustRun(t, "--db", path, "plant", "show", "koper", "--json")
	if !strings.Contains(out, `"Category": "herb"`) {
		t.Fatalf("expected default category herb, got %q", out)
	}

	out = mustRun(t, "--db", path, "doctor")
	if !strings.Contains(out, "Plants with unknown category: 0") {
		t.Fatalf("unexpected doctor output %q", out)
	}

	out = mustRun(t, "--db", path, "backup", "create")
	if !strings.Contains(out, "Created backup") {
		t.Fatalf("unexpected backup output %q", out)
	}
	out = mustRun(t, "--db", path, "backup", "list")
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected one backup listed, got %q", out)
	}
}

func TestSpacingCommand(t *testing.T) {
	isolateEnv(t)
	out := mustRun(t, "spacing", "0,5", "x", "0,4", "m")
	if !strings.Contains(out, "Between rows: 50 cm") || !strings.Contains(out, "Between plants: 40 cm") || !strings.Contains(out, "Density: 5.0 plants/m2") {
		t.Fatalf("unexpected spacing output %q", out)
	}
	if _, err := runCLI(t, "spacing", "wide"); err == nil {
		t.Fatalf("expected invalid spacing to fail")
	}
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	path := isolateEnv(t)
	t.Setenv("GARDEN_SERVER_ENVIRONMENT", "staging")
	_, err := runCLI(t, "--db", path, "serve")
	if err == nil || !strings.Contains(err.Error(), "server.environment") {
		t.Fatalf("expected config validation error, got %v", err)
	}
}
