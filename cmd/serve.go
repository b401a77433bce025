package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/huangsam/courseload/core"
	"github.com/huangsam/courseload/internal/api"
)

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the scoring engine over HTTP.

Routes:
  POST /api/burnout-scores   {"nuid"}
  POST /api/recommendations  {"nuid", "semester", "additional_interests"}
  POST /api/schedule         {"nuid", "history"}
  GET  /healthz

A missing field returns 400. Any other failure returns 500 with {"error": ...}.
When --api-key-hash is set, API routes require the matching key in X-API-Key.

Examples:
  # Listen on the default :8080 with JSON logs
  courseload serve --log-format json

  # Require an API key
  courseload serve --api-key-hash "$(echo -n s3cret | courseload hash-key)"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		logger := api.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)

		svc, err := core.NewServiceFromConfig(cfg, storeManager)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.NewServer(cfg, svc, logger).Run(ctx)
	},
}
