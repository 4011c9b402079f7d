package config

import (
	"fmt"
	"strconv"

	"github.com/atlanticdynamic/exebuild/internal/fancy"
)

// String returns a pretty-printed tree representation of the profile
func (p *Profile) String() string {
	return ProfileTree(p)
}

// ProfileTree renders the effective values of p as a tree.
func ProfileTree(p *Profile) string {
	cfg := p.ToBuildConfig()

	t := fancy.Tree()
	t.Root(fancy.RootStyle.Render(fmt.Sprintf("Build Profile (%s)", p.Version)))

	buildTree := fancy.BranchNode("Build", "")
	buildTree.Child("Script: " + fancy.PathText(orNone(cfg.ScriptPath)))
	buildTree.Child("Name: " + orNone(cfg.OutputName))
	buildTree.Child("Dist: " + fancy.PathText(orNone(cfg.OutputDir)))
	buildTree.Child("Icon: " + fancy.PathText(orNone(cfg.IconPath)))
	buildTree.Child("OneFile: " + strconv.FormatBool(cfg.OneFile))
	buildTree.Child("Windowed: " + strconv.FormatBool(cfg.Windowed))
	buildTree.Child("Clean: " + strconv.FormatBool(cfg.Clean))
	buildTree.Child("NoConfirm: " + strconv.FormatBool(cfg.NoConfirm))
	t.Child(buildTree)

	dataTree := fancy.BranchNode("Data", fmt.Sprintf("(%d)", len(cfg.DataMappings)))
	for _, m := range cfg.DataMappings {
		dataTree.Child(fancy.PathText(m.Source) + " -> " + m.Destination)
	}
	t.Child(dataTree)

	toolTree := fancy.BranchNode("Tool", "")
	toolTree.Child("Interpreter: " + p.Interpreter())
	toolTree.Child("Install: " + fancy.CommandText(p.Installer().Command().Preview))
	if p.Tool.MinVersion != "" {
		toolTree.Child("MinVersion: " + p.Tool.MinVersion)
	}
	t.Child(toolTree)

	loggingTree := fancy.BranchNode("Logging", "")
	loggingTree.Child("Format: " + orNone(p.Logging.Format))
	loggingTree.Child("Level: " + orNone(p.Logging.Level))
	t.Child(loggingTree)

	historyTree := fancy.BranchNode("History", "")
	historyTree.Child("Enabled: " + strconv.FormatBool(p.HistoryEnabled()))
	if p.History.Path != "" {
		historyTree.Child("Path: " + fancy.PathText(p.History.Path))
	}
	if p.History.Keep > 0 {
		historyTree.Child("Keep: " + strconv.Itoa(p.History.Keep))
	}
	t.Child(historyTree)

	return t.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
