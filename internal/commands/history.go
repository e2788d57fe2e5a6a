package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tallyup-dev/tallyup/internal/auditlog"
)

func newHistoryCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the statement ingest log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			entries, err := auditlog.Read(cfg.Uploads.Dir)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("no statements ingested yet")
				return nil
			}

			for _, e := range entries {
				when := e.Timestamp.Format(time.RFC3339)
				if e.Error != "" {
					cmd.Printf("%s  %-50s rejected: %s\n", when, e.FileName, e.Error)
					continue
				}
				cmd.Printf("%s  %-50s %d transactions, net %s\n", when, e.FileName, e.Transactions, e.NetAmount)
			}
			return nil
		},
	}
}
