package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/ocrchat/internal/app"
	"github.com/kailas-cloud/ocrchat/internal/config"
	"github.com/kailas-cloud/ocrchat/internal/version"
)

func newServeCmd() *cobra.Command {
	var env string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (config/<env>.yaml)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), env, version.Version, version.Commit)
		},
	}
	cmd.Flags().StringVar(&env, "env", config.GetEnv(), "configuration environment (local, dev, prod)")
	return cmd
}
