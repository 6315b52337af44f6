package cli

import (
	"fmt"
	"path/filepath"

	"github.com/IstiaqueAhmd/fitness-agent/internal/config"
	"github.com/IstiaqueAhmd/fitness-agent/internal/store"
	"github.com/spf13/cobra"
)

func newPlansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Inspect saved fitness plans",
	}

	cmd.AddCommand(newPlansListCmd())
	return cmd
}

func newPlansListCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved plans for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if cfg.Store.Backend != "sqlite" {
				return fmt.Errorf("plans list requires the sqlite store backend")
			}

			dbPath := cfg.Store.Path
			if dbPath == "" {
				dbPath = filepath.Join(paths.Data, "fitness.db")
			}
			db, err := store.Open(dbPath, log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			plans, err := store.NewPlanStore(db).ListByUser(cmd.Context(), userID)
			if err != nil {
				return err
			}

			if len(plans) == 0 {
				fmt.Printf("No plans found for user %q\n", userID)
				return nil
			}

			for _, p := range plans {
				fmt.Printf("%d\t%s\t%s\t%d weeks\t%s\n",
					p.ID, p.PlanName, p.PlanType, p.DurationWeeks,
					p.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "anonymous", "user ID to list plans for")
	return cmd
}
