package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"beg-migrate/internal/config"
	"beg-migrate/internal/invoice"
	"beg-migrate/internal/migrate"
	"beg-migrate/internal/storage"
	"beg-migrate/internal/store"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := &cobra.Command{
		Use:           "beg-migrate",
		Short:         "Migrate the legacy Access database and invoice documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var exportDir string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full relational migration from JSONL exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if exportDir != "" {
				cfg.Migration.ExportDir = exportDir
			}
			return migrate.Execute(cmd.Context(), st, cfg.Migration)
		},
	}
	runCmd.Flags().StringVar(&exportDir, "export-dir", "", "override the JSONL export directory")

	var mandatsDir string
	invoicesCmd := &cobra.Command{
		Use:   "invoices",
		Short: "Import legacy .fab invoice documents from the project share",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if mandatsDir != "" {
				cfg.Migration.MandatsDir = mandatsDir
			}

			files := invoice.NewFileMigrator(
				storage.NewLocalStorage(cfg.Storage.LocalPath),
				cfg.Migration.MandatsDir,
				cfg.Migration.MandatsDrivePrefix,
			)
			imp := invoice.NewImporter(st, files)

			// Per-document failures are already counted and logged; only a
			// broken share mount or database aborts the command.
			_, _, err = imp.ImportAll(cmd.Context(), cfg.Migration.MandatsDir)
			return err
		},
	}
	invoicesCmd.Flags().StringVar(&mandatsDir, "mandats-dir", "", "override the mounted project share root")

	root.AddCommand(runCmd, invoicesCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Error("migration failed")
		os.Exit(1)
	}
}

// setup loads config, opens the target database, and makes sure the schema
// exists.
func setup(ctx context.Context) (*config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.New(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}
	return cfg, st, nil
}
