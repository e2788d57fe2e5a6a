package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallyup-dev/tallyup/internal/ingest"
	"github.com/tallyup-dev/tallyup/internal/logger"
	"github.com/tallyup-dev/tallyup/internal/statement"
	"github.com/tallyup-dev/tallyup/internal/store"
)

func newImportCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Ingest statement CSV files",
		Args:  cobra.MinimumNArgs(1),
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

			if _, err := st.EnsureIgnoreCategory(context.Background()); err != nil {
				return fmt.Errorf("initializing categories: %w", err)
			}

			var files []ingest.File
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				files = append(files, ingest.File{Name: filepath.Base(path), Data: data})
			}

			pipeline := ingest.New(st, statement.NewClassifier(cfg.Statements), log).WithAuditDir(cfg.Uploads.Dir)
			results := pipeline.ProcessBatch(context.Background(), files)

			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.FileName, res.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: statement %s\n", res.FileName, res.StatementID)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
}
