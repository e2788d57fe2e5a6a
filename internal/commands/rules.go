package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tallyup-dev/tallyup/internal/rulefile"
	"github.com/tallyup-dev/tallyup/internal/store"
)

func newRulesCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Export and import category assignment rules",
	}
	cmd.AddCommand(newRulesExportCommand(configPath))
	cmd.AddCommand(newRulesImportCommand(configPath))
	return cmd
}

func newRulesExportCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the rule list to a CSV file",
		Args:  cobra.ExactArgs(1),
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

			rules, err := st.Rules(context.Background())
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			defer f.Close()

			if err := rulefile.WriteRules(f, rules); err != nil {
				return err
			}
			cmd.Printf("exported %d rules to %s\n", len(rules), args[0])
			return nil
		},
	}
}

func newRulesImportCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the rule list with the contents of a CSV file",
		Args:  cobra.ExactArgs(1),
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

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			rules, err := rulefile.ReadRules(f)
			if err != nil {
				return err
			}
			for i := range rules {
				if rules[i].ID == "" {
					rules[i].ID = uuid.NewString()
				}
			}

			if err := st.ReplaceRules(context.Background(), rules); err != nil {
				return err
			}
			cmd.Printf("imported %d rules from %s\n", len(rules), args[0])
			return nil
		},
	}
}
