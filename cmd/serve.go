package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/trackdl/internal/server"
)

// Serve runs the download API server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := int(cmd.Int("port"))
	if port == 0 {
		port = r.config.Server.Port
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	history, closeFn, err := r.openHistory()
	if err != nil {
		r.logger.Warn("history unavailable, downloads will not be recorded", "error", err)
		history = nil
	} else {
		defer closeFn()
	}

	router := server.NewBasicRouter()
	router.Use(server.Recovery(r.logger), server.Logging(r.logger))
	router.Handler(server.NewDownloadHandler(r.engine, history, r.logger))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, addr, router, r.logger)
}
