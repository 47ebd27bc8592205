package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhonlemus05/FastBite-Delivery/app/routes"
	"github.com/jhonlemus05/FastBite-Delivery/config"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/app"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/telemetry"
)

// fastbite serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdownTracer, err := telemetry.SetupTracer(ctx, config.AppName())
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Warn("tracer shutdown failed", "error", err)
			}
		}()

		infra, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer infra.Close()

		return app.New(infra).
			Routes(routes.RegisterWeb).
			Serve(ctx, ":"+config.AppPort())
	},
}

// fastbite route:list: print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		infra := app.NewTestInfra(config.StorageLocalRoot())
		infos := app.New(infra).Routes(routes.RegisterWeb).Router().Routes()
		if len(infos) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
