package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atlanticdynamic/exebuild/internal/config"
	"github.com/urfave/cli/v3"
)

var validateCmd = &cli.Command{
	Name:      "validate",
	Aliases:   []string{"lint"},
	Usage:     "Validate a build profile",
	ArgsUsage: "<profile.toml>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "tree",
			Aliases: []string{"t"},
			Usage:   "Show detailed tree view of the validated profile",
		},
	},
	Suggest: true,
	Action:  validateAction,
}

func validateAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return cli.Exit("profile path required", exitUsage)
	}
	path := cmd.Args().First()

	p, err := config.NewProfile(path)
	if err != nil {
		return cli.Exit(fmt.Errorf("validation failed: %w", err), exitFailure)
	}

	w := writerOf(cmd)
	fmt.Fprintf(w, "Profile %s is valid\n", path)
	if cmd.Bool("tree") {
		fmt.Fprintln(w, p)
		return nil
	}
	fmt.Fprintln(w, renderProfileSummary(path, p))
	return nil
}

// renderProfileSummary creates a formatted summary string for the profile
func renderProfileSummary(path string, p *config.Profile) string {
	cfg := p.ToBuildConfig()

	var summary strings.Builder
	summary.WriteString("\nProfile Summary:\n")
	summary.WriteString(fmt.Sprintf("- Path: %s\n", path))
	summary.WriteString(fmt.Sprintf("- Version: %s\n", p.Version))
	summary.WriteString(fmt.Sprintf("- Script: %s\n", orDash(cfg.ScriptPath)))
	summary.WriteString(fmt.Sprintf("- Name: %s\n", orDash(cfg.OutputName)))
	summary.WriteString(fmt.Sprintf("- Data: %d\n", len(cfg.DataMappings)))
	summary.WriteString("\nUse --tree for a more detailed view of the profile.")
	return summary.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
