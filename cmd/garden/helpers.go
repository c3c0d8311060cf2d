package garden

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/plotwise/garden/internal/app"
	"github.com/plotwise/garden/internal/db"
	"github.com/plotwise/garden/internal/logging"
	"github.com/plotwise/garden/internal/service"
)

const frostPrompt = "Set your frost dates with `garden frost set --last YYYY-MM-DD` to see planting dates."

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

func resolveDBPath() (string, error) {
	if p := strings.TrimSpace(cfg.DB); p != "" {
		return p, nil
	}
	return app.DefaultDBPath()
}

func newLogger() (*zap.Logger, error) {
	return logging.New(cfg.LogLevel)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(b))
	return nil
}

// handleMissingFrost turns ErrFrostDatesNotSet into a prompt so the command
// still exits 0.
func handleMissingFrost(w io.Writer, err error) error {
	if errors.Is(err, service.ErrFrostDatesNotSet) {
		fmt.Fprintln(w, frostPrompt)
		return nil
	}
	return err
}
