package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tallyup-dev/tallyup/internal/ingest"
	"github.com/tallyup-dev/tallyup/internal/logger"
	"github.com/tallyup-dev/tallyup/internal/statement"
	"github.com/tallyup-dev/tallyup/internal/store"
)

func newDedupeCommand(configPath *string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove cross-statement duplicate credit-card transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			log := logger.New()

			st, err := store.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			pipeline := ingest.New(st, statement.NewClassifier(cfg.Statements), log)
			ctx := context.Background()

			if dryRun {
				duplicates, err := pipeline.Duplicates(ctx)
				if err != nil {
					return err
				}
				for _, txn := range duplicates {
					cmd.Printf("%s  %s  %s  %s\n", txn.ID, txn.PostDate, txn.Description, txn.Amount.StringFixed(2))
				}
				cmd.Printf("%d duplicates found\n", len(duplicates))
				return nil
			}
			return pipeline.RemoveDuplicates(ctx)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list duplicates without deleting them")
	return cmd
}
