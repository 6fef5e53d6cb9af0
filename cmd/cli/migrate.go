package cli

import (
	"github.com/spf13/cobra"
	"pricecrowd-backend/cmd/config"
	migration "pricecrowd-backend/cmd/database/migrate"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.ConnectDB()
			if err != nil {
				return err
			}
			return migration.Migrate(db)
		},
	}
}
