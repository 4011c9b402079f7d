package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/atlanticdynamic/exebuild/internal/fancy"
	"github.com/atlanticdynamic/exebuild/internal/history"
	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/urfave/cli/v3"
)

var historyCmd = &cli.Command{
	Name:  "history",
	Usage: "List recorded build and install sessions, newest first",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "history-db",
			Usage:   "Path of the session history database",
			Sources: cli.EnvVars("EXEBUILD_HISTORY_DB"),
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Maximum number of sessions to show (0 shows all)",
			Value:   20,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print records as JSON lines",
		},
		&cli.IntFlag{
			Name:  "prune",
			Usage: "Delete all but the newest N sessions before listing",
		},
	},
	Action: historyAction,
}

func historyAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("history-db")
	if path == "" {
		path = history.DefaultPath()
	}
	store, err := history.Open(absPath(path))
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	defer func() { _ = store.Close() }()

	w := writerOf(cmd)
	if keep := int(cmd.Int("prune")); keep > 0 {
		n, err := store.Prune(keep)
		if err != nil {
			return cli.Exit(err, exitFailure)
		}
		fmt.Fprintf(w, "Pruned %d session(s)\n", n)
	}

	records, err := store.List(int(cmd.Int("limit")))
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	if cmd.Bool("json") {
		return writeRecordsJSON(w, records)
	}
	writeRecords(w, records)
	return nil
}

func writeRecordsJSON(w io.Writer, records []history.Record) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
		}
	}
	return nil
}

func writeRecords(w io.Writer, records []history.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, fancy.InfoStyle.Render("No sessions recorded"))
		return
	}
	for _, rec := range records {
		st := logsink.Status{Kind: rec.Status, ExitCode: rec.ExitCode, Message: rec.Message}
		target := rec.Script
		if target == "" {
			target = rec.Command
		}
		fmt.Fprintf(w, "%s %s  %-7s %s  %s  %s\n",
			fancy.StatusStyle(rec.Status).Render(fancy.StatusIcon(rec.Status)),
			rec.StartedAt.Local().Format(time.DateTime),
			rec.Kind,
			fancy.StatusStyle(rec.Status).Render(st.String()),
			rec.Duration().Round(time.Millisecond),
			fancy.PathText(target),
		)
	}
}
