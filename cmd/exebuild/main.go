package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// Version is set during build using ldflags
var Version = "dev"

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "exebuild",
		Version: Version,
		Usage:   "Package Python scripts into standalone executables with PyInstaller",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Operational log level (trace, debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("EXEBUILD_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Operational log format (text or json)",
				Value:   "text",
				Sources: cli.EnvVars("EXEBUILD_LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "log-output",
				Usage:   "Where operational logs go: stderr, stdout or a file path",
				Value:   "stderr",
				Sources: cli.EnvVars("EXEBUILD_LOG_OUTPUT"),
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output",
				Sources: cli.EnvVars("NO_COLOR"),
			},
		},
		Before: setupLogging,
		After:  closeLogging,
		Commands: []*cli.Command{
			buildCmd,
			previewCmd,
			installCmd,
			probeCmd,
			historyCmd,
			validateCmd,
			versionCmd,
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			if msg := exitErr.Error(); msg != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
