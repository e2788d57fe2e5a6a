package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tallyup-dev/tallyup/internal/categorize"
	"github.com/tallyup-dev/tallyup/internal/model"
	"github.com/tallyup-dev/tallyup/internal/store"
)

func newReportCommand(configPath *string) *cobra.Command {
	var startDate, endDate string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print categorized spending totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			ignore, err := st.EnsureIgnoreCategory(ctx)
			if err != nil {
				return err
			}
			categories, err := st.Categories(ctx)
			if err != nil {
				return err
			}
			rules, err := st.Rules(ctx)
			if err != nil {
				return err
			}

			creditCard, err := st.Transactions(ctx, model.KindCreditCard, startDate, endDate)
			if err != nil {
				return err
			}
			checking, err := st.Transactions(ctx, model.KindChecking, startDate, endDate)
			if err != nil {
				return err
			}

			engine := categorize.NewEngine(categorize.NewDirectory(categories), rules, ignore.ID)
			result := engine.Categorize(append(creditCard, checking...))

			byCategory := make(map[string]int)
			for _, a := range result.Categorized {
				byCategory[a.Category.Name]++
			}
			for name, count := range byCategory {
				cmd.Printf("%-30s %d\n", name, count)
			}
			cmd.Printf("categorized: %d  ignored: %d  uncategorized: %d\n",
				len(result.Categorized), len(result.Ignored), len(result.Uncategorized))
			cmd.Printf("net spend: %s\n", result.NetTotal.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "inclusive ISO start date")
	cmd.Flags().StringVar(&endDate, "end", "", "inclusive ISO end date")
	return cmd
}
