package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/tallyup-dev/tallyup/internal/ingest"
	"github.com/tallyup-dev/tallyup/internal/logger"
	"github.com/tallyup-dev/tallyup/internal/server"
	"github.com/tallyup-dev/tallyup/internal/statement"
	"github.com/tallyup-dev/tallyup/internal/store"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
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

			if _, err := st.EnsureIgnoreCategory(context.Background()); err != nil {
				return fmt.Errorf("initializing categories: %w", err)
			}

			classifier := statement.NewClassifier(cfg.Statements)
			pipeline := ingest.New(st, classifier, log).WithAuditDir(cfg.Uploads.Dir)
			srv := server.New(st, pipeline, log)

			log.Info().Str("addr", cfg.Server.Addr).Msg("listening")
			return http.ListenAndServe(cfg.Server.Addr, srv.Router())
		},
	}
}
