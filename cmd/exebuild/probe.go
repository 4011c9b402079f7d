package main

import (
	"context"
	"fmt"

	"github.com/atlanticdynamic/exebuild/internal/build"
	"github.com/atlanticdynamic/exebuild/internal/fancy"
	"github.com/atlanticdynamic/exebuild/internal/probe"
	"github.com/urfave/cli/v3"
)

var probeCmd = &cli.Command{
	Name:  "probe",
	Usage: "Report whether PyInstaller can be started and which version it is",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "Path to a TOML build profile; its [tool] section is used",
			Sources: cli.EnvVars("EXEBUILD_PROFILE"),
		},
		&cli.StringFlag{
			Name:    "python",
			Usage:   "Python interpreter that runs PyInstaller",
			Sources: cli.EnvVars("EXEBUILD_PYTHON"),
		},
		&cli.StringFlag{
			Name:  "constraint",
			Usage: "Version constraint the tool must satisfy, e.g. \">= 6.0\"",
		},
	},
	Action: probeAction,
}

func probeAction(ctx context.Context, cmd *cli.Command) error {
	p, err := loadProfile(cmd)
	if err != nil {
		return cli.Exit(err, exitUsage)
	}
	if cmd.IsSet("constraint") {
		if _, err := probe.ParseConstraint(cmd.String("constraint")); err != nil {
			return cli.Exit(err, exitUsage)
		}
		p.Tool.MinVersion = cmd.String("constraint")
	}

	w := writerOf(cmd)
	launcher := p.Builder().Launcher
	prober := probe.NewToolProbe(launcher, p.ProbeOptions()...)
	v, err := prober.Check(ctx)
	if err != nil {
		fmt.Fprintln(w, fancy.ErrorText(err.Error()))
		fmt.Fprintln(w, fancy.InfoStyle.Render(p.Installer().Hint()))
		return cli.Exit("", exitUsage)
	}

	version := "unknown version"
	if v != nil {
		version = v.String()
	}
	fmt.Fprintf(w, "%s PyInstaller %s (%s)\n",
		fancy.ValidText("✔"), version, fancy.CommandText(build.RenderPreview(launcher)))
	return nil
}
