// logctl writes lines through a configured logger handle and forces file
// rotation. It is handy for checking a logging config before shipping it.
//
// Usage:
//
//	logctl [global options] <command> [command options] [args]
//
// Commands:
//
//	emit <message>   write a message (repeat with --count)
//	rotate           roll the log file over
//
// Examples:
//
//	logctl --name worker --level debug emit --severity debug "hello"
//	logctl --config logging.yaml emit --count 10000 "fill"
//	logctl --file /tmp/app.log rotate
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/Station-Manager/logregistry"
)

// Version can be injected with -ldflags "-X main.Version=...".
var Version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := logging.NewRegistry()
	defer func() { _ = reg.Close() }()

	if err := createApp(reg).Run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "logctl: %v\n", err)
		if logging.IsConfigurationError(err) {
			return 2
		}
		return 1
	}
	return 0
}
