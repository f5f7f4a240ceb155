package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/philipparndt/stl2glb/internal/server"
)

var (
	serveAddr     string
	serveNoRender bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversion and rendering over HTTP",
	Long: `Start an HTTP server with these endpoints:

  POST /convert   binary STL body, GLB response
  POST /render    OpenSCAD source body (?preview=true), GLB response
  GET  /healthz   liveness
  GET  /metrics   Prometheus metrics

Add ?encoding=base64 to /convert or /render for a base64 response.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverCfg := cfg.Server
		if serveAddr != "" {
			serverCfg.Addr = serveAddr
		}

		var renderer server.Renderer
		if !serveNoRender {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			renderer = newRenderer(wd)
		}

		return server.New(serverCfg, renderer, cfg.OpenSCAD.Timeout, log).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveNoRender, "no-render", false, "Disable the /render endpoint")
}
