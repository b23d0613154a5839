package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/poi-sync/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the locations table for the SQL store drivers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "migrate"), zap.String("driver", cfg.Store.Driver))

		if cfg.Store.Driver != "postgres" && cfg.Store.Driver != "sqlite" {
			return eris.Errorf("migrate: driver %s has no schema to migrate", cfg.Store.Driver)
		}
		if cfg.Store.DatabaseURL == "" {
			return eris.New("migrate: store.database_url is required")
		}

		st, err := openStore(ctx, cfg, false)
		if err != nil {
			return eris.Wrap(err, "migrate: open store")
		}
		defer st.Close() //nolint:errcheck

		m, ok := st.(store.Migrator)
		if !ok {
			return eris.Errorf("migrate: driver %s has no schema to migrate", cfg.Store.Driver)
		}
		if err := m.Migrate(ctx); err != nil {
			return err
		}

		log.Info("migration complete")
		fmt.Fprintln(cmd.OutOrStdout(), "Migration complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
