package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ersonp/kin-core/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a family tree over HTTP",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine; everything can come from the environment.
			_ = godotenv.Load()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				if addr == "" {
					addr = d.Config.Server.Addr
				}

				srv := server.New(server.Handlers{
					Relationships: d.Relationships,
					Members:       d.Members,
					Materialize:   d.Materialize,
					Search:        d.Search,
				}, d.Logger)

				if err := srv.Start(cmd.Context(), addr); err != nil {
					return fmt.Errorf("serving: %w", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}
