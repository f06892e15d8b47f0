package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
	"github.com/tnt-dev/tnt/internal/watch"
	"github.com/tnt-dev/tnt/pkg/app"
	"github.com/tnt-dev/tnt/pkg/router"
	"github.com/tnt-dev/tnt/pkg/server"
	"github.com/tnt-dev/tnt/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		flags  projectFlags
		port   int
		host   string
		reload bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live preview server",
		Long: `Serve the mounted template and keep it live.

Browser events are sent to the server over a websocket, handled there,
and the re-rendered container is pushed back. Elements outside the mount
container carrying data-route become hash routes; the one also carrying
data-route-main is shown for an empty hash.

Examples:
  tnt serve
  tnt serve --port=8080 --data state.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(flags)
			if err != nil {
				return err
			}
			if port > 0 {
				p.cfg.Dev.Port = port
			}
			if host != "" {
				p.cfg.Dev.Host = host
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, p, reload)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from tnt.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from tnt.json)")
	cmd.Flags().BoolVarP(&reload, "watch", "w", true, "Reload the data file when it changes")

	return cmd
}

func runServe(ctx context.Context, p *project, reload bool) error {
	tel := telemetry.New()
	a := p.newApp(app.WithHooks(tel.Hooks()))

	var r *router.Router
	candidate := router.New(p.doc, a.Registry(), router.WithLogger(p.logger))
	if n := candidate.Discover(p.doc.Root(), p.container); n > 0 {
		r = candidate
		p.logger.Info("hash routes found", "count", n)
	}

	config := server.DefaultConfig()
	config.Address = p.cfg.DevAddress()
	config.Router = r
	config.Telemetry = tel
	config.Logger = p.logger

	srv, err := server.New(a, p.doc, p.container, config)
	if err != nil {
		return err
	}
	if reload && p.dataPath != "" {
		w := watch.New(watch.Config{Files: []string{p.dataPath}})
		w.OnChange(func(c watch.Change) { reloadOnChange(ctx, srv, a, p, c) })
		go w.Start(ctx)
	}

	success("Preview at http://%s", config.Address)
	fmt.Fprintln(os.Stderr, "  Press Ctrl+C to stop")
	return srv.Run(ctx)
}

// reloadOnChange re-reads the data file and applies it on the server loop.
// A file that fails to parse leaves the app as it was.
func reloadOnChange(ctx context.Context, srv *server.Server, a *app.App, p *project, c watch.Change) {
	if c.Op == watch.Removed {
		p.logger.Warn("data file removed", "path", c.Path)
		return
	}
	data, err := readData(c.Path)
	if err != nil {
		p.logger.Error("data reload failed", "code", tnterrors.Code(err), "error", err)
		return
	}
	err = srv.Update(ctx, func() error { return reloadData(a, data) })
	if err != nil {
		p.logger.Error("data reload failed", "error", err)
		return
	}
	p.logger.Info("data reloaded", "path", c.Path)
}
