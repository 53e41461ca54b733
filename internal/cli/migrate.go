package cli

import (
	"github.com/spf13/cobra"

	"github.com/seguel/whizzat-backend-sub000/internal/store"
)

// newMigrateCmd applies the schema without starting anything.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewSQLiteStore(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Info("migrations applied", "path", cfg.DBPath)
			return nil
		},
	}
}
