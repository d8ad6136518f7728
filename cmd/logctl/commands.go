package main

import (
	"context"
	"strings"

	logging "github.com/Station-Manager/logregistry"
	"github.com/urfave/cli/v3"
)

func createApp(reg *logging.Registry) *cli.Command {
	return &cli.Command{
		Name:    "logctl",
		Usage:   "write log lines through a configured logger handle",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "app-config", Usage: "Station-Manager working directory holding config.json"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML or JSON logging config file"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "logger name"},
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "minimum level (overrides LOG_LEVEL)"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "log file path (default logs/<name>.log)"},
			&cli.StringFlag{Name: "max-size", Usage: "rotation threshold, e.g. 10MiB"},
			&cli.IntFlag{Name: "backups", Value: -1, Usage: "rotated files to keep (-1 keeps the default)"},
			&cli.StringFlag{Name: "rotation", Usage: "numbered or timestamped"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "do not mirror lines to stdout"},
		},
		Commands: []*cli.Command{
			emitCommand(reg),
			rotateCommand(reg),
		},
	}
}

func emitCommand(reg *logging.Registry) *cli.Command {
	return &cli.Command{
		Name:      "emit",
		Usage:     "write a message",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "severity", Aliases: []string{"s"}, Value: "info", Usage: "level of the emitted line"},
			&cli.IntFlag{Name: "count", Value: 1, Usage: "number of times to write the message"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			h, err := setupHandle(reg, cmd)
			if err != nil {
				return err
			}
			severity, err := logging.ParseLevel(cmd.String("severity"))
			if err != nil {
				return err
			}
			msg := strings.Join(cmd.Args().Slice(), " ")
			count := int(cmd.Int("count"))
			for i := 0; i < count; i++ {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				eventFor(h, severity).Msg(msg)
			}
			return nil
		},
	}
}

func rotateCommand(reg *logging.Registry) *cli.Command {
	return &cli.Command{
		Name:  "rotate",
		Usage: "roll the log file over",
		Action: func(_ context.Context, cmd *cli.Command) error {
			h, err := setupHandle(reg, cmd)
			if err != nil {
				return err
			}
			return h.Rotate()
		},
	}
}

// setupHandle layers flags over the config files and sets the handle up.
func setupHandle(reg *logging.Registry, cmd *cli.Command) (*logging.Handle, error) {
	opts, err := setupOptions(cmd)
	if err != nil {
		return nil, err
	}
	return reg.Setup(opts...)
}

func setupOptions(cmd *cli.Command) ([]logging.Option, error) {
	var opts []logging.Option
	if dir := cmd.String("app-config"); dir != "" {
		svc, err := logging.LoadAppConfig(dir)
		if err != nil {
			return nil, err
		}
		if opts, err = logging.FromConfigService(dir, cmd.String("name"), svc); err != nil {
			return nil, err
		}
	}
	if path := cmd.String("config"); path != "" {
		cfg, err := logging.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		fileOpts, err := cfg.Options()
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts...)
	}
	if v := cmd.String("name"); v != "" {
		opts = append(opts, logging.WithName(v))
	}
	if v := cmd.String("level"); v != "" {
		opts = append(opts, logging.WithLevel(v))
	}
	if v := cmd.String("file"); v != "" {
		opts = append(opts, logging.WithFilePath(v))
	}
	if v := cmd.String("max-size"); v != "" {
		n, err := logging.ParseSize(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, logging.WithMaxBytes(n))
	}
	if n := int(cmd.Int("backups")); n >= 0 {
		opts = append(opts, logging.WithBackupCount(n))
	}
	if v := cmd.String("rotation"); v != "" {
		opts = append(opts, logging.WithRotation(logging.RotationStyle(strings.ToLower(v))))
	}
	if cmd.Bool("quiet") {
		opts = append(opts, logging.WithoutConsole())
	}
	return opts, nil
}

func eventFor(h *logging.Handle, l logging.Level) logging.LogEvent {
	switch l {
	case logging.LevelDebug:
		return h.DebugWith()
	case logging.LevelWarning:
		return h.WarnWith()
	case logging.LevelError:
		return h.ErrorWith()
	case logging.LevelCritical:
		return h.CriticalWith()
	default:
		return h.InfoWith()
	}
}
