package main

import (
	"context"
	"fmt"

	"github.com/atlanticdynamic/exebuild/internal/controller"
	"github.com/atlanticdynamic/exebuild/internal/fancy"
	"github.com/urfave/cli/v3"
)

var installCmd = &cli.Command{
	Name:  "install",
	Usage: "Install PyInstaller with pip and verify it can be started",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "Path to a TOML build profile; its [tool] section selects interpreter and requirement",
			Sources: cli.EnvVars("EXEBUILD_PROFILE"),
		},
		&cli.StringFlag{
			Name:    "python",
			Usage:   "Python interpreter that runs pip",
			Sources: cli.EnvVars("EXEBUILD_PYTHON"),
		},
		&cli.StringFlag{
			Name:  "requirement",
			Usage: "pip requirement to install, e.g. \"pyinstaller>=6\"",
		},
		&cli.BoolFlag{
			Name:  "user",
			Usage: "Pass --user to pip",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Print the install command without running it",
		},
	},
	Action: installAction,
}

func installAction(ctx context.Context, cmd *cli.Command) error {
	p, err := loadProfile(cmd)
	if err != nil {
		return cli.Exit(err, exitUsage)
	}
	if cmd.IsSet("requirement") {
		p.Tool.Requirement = cmd.String("requirement")
	}

	installer := p.Installer()
	if cmd.Bool("user") {
		installer.ExtraArgs = append(installer.ExtraArgs, "--user")
	}
	if cmd.Bool("dry-run") {
		fmt.Fprintln(writerOf(cmd), fancy.CommandText(installer.Command().Preview))
		return nil
	}

	env, err := newRunEnv(p, nil, true, controller.WithInstaller(installer))
	if err != nil {
		return cli.Exit(err, exitUsage)
	}
	defer env.Close()

	st, err := env.run(ctx, cmd, func(ctx context.Context) (*controller.Session, error) {
		return env.ctrl.Install(ctx)
	})
	if err != nil {
		return cli.Exit(err, exitUsage)
	}
	return statusErr(st)
}
