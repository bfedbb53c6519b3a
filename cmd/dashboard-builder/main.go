// cmd/dashboard-builder/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mobs-lab/hubverse-dashboards/internal/cli"
	"github.com/mobs-lab/hubverse-dashboards/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:],
		cli.IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr},
		cli.BuildInfo{Version: version.Version, Commit: version.Commit, BuildTime: version.BuildTime},
	)
	stop()
	os.Exit(code)
}
