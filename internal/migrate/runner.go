package migrate

import (
	"context"
	"fmt"
	"time"

	"beg-migrate/internal/config"
	"beg-migrate/internal/store"
)

type stage struct {
	name string
	fn   func(ctx context.Context, run *Run) error
}

// stages lists every migration stage in dependency order. Referenced rows
// are always loaded before the rows that point at them.
var stages = []stage{
	{"reset", resetTarget},
	{"users", importUsers},
	{"locations", importLocations},
	{"companies", importCompanies},
	{"clients", importClients},
	{"project types", importProjectTypes},
	{"engineers", importEngineers},
	{"rate classes", importRateClasses},
	{"projects", importProjects},
	{"project coordinates", importProjectCoordinates},
	{"activity types", importActivityTypes},
	{"activities", importActivities},
	{"workloads", importWorkloads},
	{"project members", importProjectMembers},
	{"vat rates", importVATRates},
	{"monthly hours", importMonthlyHours},
}

// Execute runs the full migration against an already-initialized store.
// The target tables are emptied first, so the run is re-executable: the
// result reflects exactly the current exports.
func Execute(ctx context.Context, st *store.Store, cfg config.MigrationConfig) error {
	run := newRun(st, cfg)
	started := time.Now()
	run.Log.WithField("export_dir", cfg.ExportDir).Info("starting migration")

	for _, s := range stages {
		stageStart := time.Now()
		if err := s.fn(ctx, run); err != nil {
			return fmt.Errorf("stage %s: %w", s.name, err)
		}
		run.Log.WithField("elapsed", time.Since(stageStart).Round(time.Millisecond)).
			Infof("stage %s done", s.name)
	}

	run.Log.WithField("elapsed", time.Since(started).Round(time.Millisecond)).
		Info("migration complete")
	return nil
}
