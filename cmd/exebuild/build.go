package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atlanticdynamic/exebuild/internal/config"
	"github.com/atlanticdynamic/exebuild/internal/controller"
	"github.com/atlanticdynamic/exebuild/internal/fancy"
	"github.com/atlanticdynamic/exebuild/internal/logging"
	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/urfave/cli/v3"
)

// profileFlags are shared by build and preview. Unset flags leave the
// profile's values alone.
func profileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "Path to a TOML build profile",
			Sources: cli.EnvVars("EXEBUILD_PROFILE"),
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Name of the produced executable (default: script base name)",
		},
		&cli.StringFlag{
			Name:  "distpath",
			Usage: "Directory the executable is written to (default: ./dist)",
		},
		&cli.StringFlag{
			Name:  "icon",
			Usage: "Path to a .ico file",
		},
		&cli.BoolFlag{
			Name:  "onefile",
			Usage: "Bundle everything into a single executable",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "windowed",
			Usage: "Do not open a console window when the program starts",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "clean",
			Usage: "Clear the packaging cache before building",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "noconfirm",
			Usage: "Replace an existing output directory without asking",
			Value: true,
		},
		&cli.StringSliceFlag{
			Name:  "add-data",
			Usage: "Bundle a file or directory as SRC[=DEST] (repeatable)",
		},
		&cli.StringFlag{
			Name:    "python",
			Usage:   "Python interpreter that runs PyInstaller",
			Sources: cli.EnvVars("EXEBUILD_PYTHON"),
		},
	}
}

var buildCmd = &cli.Command{
	Name:      "build",
	Usage:     "Package a script into an executable",
	ArgsUsage: "[script]",
	Flags: append(profileFlags(),
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Follow the build in an interactive terminal UI",
		},
		&cli.BoolFlag{
			Name:  "timestamps",
			Usage: "Prefix console lines with their arrival time",
		},
		&cli.StringFlag{
			Name:    "history-db",
			Usage:   "Path of the session history database",
			Sources: cli.EnvVars("EXEBUILD_HISTORY_DB"),
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record this session",
		},
		&cli.BoolFlag{
			Name:  "events",
			Usage: "Print the session's structured events after it finished",
		},
	),
	Suggest: true,
	Action:  buildAction,
}

var previewCmd = &cli.Command{
	Name:      "preview",
	Aliases:   []string{"dry-run"},
	Usage:     "Print the PyInstaller command line without running it",
	ArgsUsage: "[script]",
	Flags:     profileFlags(),
	Suggest:   true,
	Action:    previewAction,
}

func buildAction(ctx context.Context, cmd *cli.Command) error {
	p, err := loadProfile(cmd)
	if err != nil {
		return cli.Exit(err, exitUsage)
	}
	applyHistoryFlags(cmd, p)

	// Session events are captured only at levels the handler enables.
	var handler slog.Handler
	if cmd.Bool("events") {
		handler, err = logging.NewHandler("debug", cmd.String("log-format"), io.Discard)
		if err != nil {
			return cli.Exit(err, exitUsage)
		}
	}

	env, err := newRunEnv(p, handler, true)
	if err != nil {
		return cli.Exit(err, exitUsage)
	}
	defer env.Close()

	cfg := p.ToBuildConfig()
	st, err := env.run(ctx, cmd, func(ctx context.Context) (*controller.Session, error) {
		return env.ctrl.Start(ctx, cfg)
	})
	if err != nil {
		return cli.Exit(err, exitUsage)
	}
	return statusErr(st)
}

func previewAction(_ context.Context, cmd *cli.Command) error {
	p, err := loadProfile(cmd)
	if err != nil {
		return cli.Exit(err, exitUsage)
	}
	cfg := p.ToBuildConfig()
	if strings.TrimSpace(cfg.ScriptPath) == "" {
		return cli.Exit("no script given: pass it as an argument or set build.script in the profile", exitUsage)
	}

	line, warnings := p.Builder().Build(cfg)
	printPreview(writerOf(cmd), line.Preview, warnings)
	return nil
}

func printPreview(w io.Writer, preview string, warnings []string) {
	for _, warn := range warnings {
		fmt.Fprintln(w, fancy.LineText(logsink.Warning("", warn)))
	}
	fmt.Fprintln(w, fancy.KindStyle(logsink.KindInfo).Render("Command:"))
	fmt.Fprintln(w, fancy.CommandText("  "+preview))
}

// loadProfile reads --profile, when given, and applies the command-line
// overrides on top of it.
func loadProfile(cmd *cli.Command) (*config.Profile, error) {
	p := config.Default()
	if path := cmd.String("profile"); path != "" {
		loaded, err := config.NewProfile(path)
		if err != nil {
			return nil, err
		}
		p = loaded
	}

	if cmd.Args().Len() > 0 {
		p.Build.Script = absPath(cmd.Args().First())
	}
	if cmd.IsSet("name") {
		p.Build.Name = cmd.String("name")
	}
	if cmd.IsSet("distpath") {
		p.Build.Dist = absPath(cmd.String("distpath"))
	}
	if cmd.IsSet("icon") {
		p.Build.Icon = absPath(cmd.String("icon"))
	}
	for flag, dst := range map[string]**bool{
		"onefile":   &p.Build.OneFile,
		"windowed":  &p.Build.Windowed,
		"clean":     &p.Build.Clean,
		"noconfirm": &p.Build.NoConfirm,
	} {
		if cmd.IsSet(flag) {
			v := cmd.Bool(flag)
			*dst = &v
		}
	}
	for _, raw := range cmd.StringSlice("add-data") {
		p.Data = append(p.Data, parseDataFlag(raw))
	}
	if cmd.IsSet("python") {
		p.Tool.Interpreter = cmd.String("python")
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrFailedToValidateConfig, err)
	}
	applyProfileLogging(cmd, p)
	return p, nil
}

func applyHistoryFlags(cmd *cli.Command, p *config.Profile) {
	if cmd.IsSet("history-db") {
		p.History.Path = absPath(cmd.String("history-db"))
	}
	if cmd.Bool("no-history") {
		off := false
		p.History.Enabled = &off
	}
}

// parseDataFlag splits SRC[=DEST]. An empty destination is derived from
// the source when the profile is converted.
func parseDataFlag(raw string) config.Data {
	src, dest, _ := strings.Cut(raw, "=")
	return config.Data{
		Source:      absPath(strings.TrimSpace(src)),
		Destination: strings.TrimSpace(dest),
	}
}

func absPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func writerOf(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
