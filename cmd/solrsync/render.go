package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/esgf/solrsync/reconcile"
	"github.com/esgf/solrsync/sql/checkpoints"
	"github.com/esgf/solrsync/sql/sessions"
)

func (app *App) newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(app.out)
	tw.SetStyle(table.StyleRounded)
	return tw
}

func syncStatus(inSync bool) string {
	if inSync {
		return text.FgGreen.Sprint("in sync")
	}
	return text.FgRed.Sprint("diverged")
}

// render prints a summary of the report.
func (app *App) render(report *reconcile.Report) {
	fmt.Fprintf(app.out, "session %s (%s) finished in %s\n",
		report.ID, report.Mode, report.Finished.Sub(report.Started).Round(time.Millisecond))

	tw := app.newTable()
	tw.AppendHeader(table.Row{
		"core", "windows", "repaired", "divergent", "migrated", "skipped", "source", "target", "status",
	})
	for _, cr := range report.Cores {
		tw.AppendRow(table.Row{
			cr.Core,
			cr.WindowsExamined,
			cr.WindowsRepaired,
			cr.Divergent,
			cr.Migrated,
			cr.Skipped,
			cr.Source.Count,
			cr.Target.Count,
			syncStatus(cr.InSync),
		})
	}
	tw.AppendFooter(table.Row{"total", "", "", "", report.Migrated(), report.Skipped(), "", "", syncStatus(report.InSync())})
	tw.Render()
	if report.Error != "" {
		fmt.Fprintln(app.out, text.FgRed.Sprint("error: ")+report.Error)
	}
}

// ListCheckpoints prints all stored checkpoints.
func (app *App) ListCheckpoints() error {
	if err := app.OpenState(); err != nil {
		return err
	}
	all, err := checkpoints.All(app.db)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(app.out, "no checkpoints")
		return nil
	}
	tw := app.newTable()
	tw.AppendHeader(table.Row{"target", "core", "filter", "boundary", "windows", "updated"})
	for _, cp := range all {
		tw.AppendRow(table.Row{
			cp.Target,
			cp.Core,
			cp.Filter,
			cp.Boundary.UTC().Format(time.RFC3339),
			cp.Windows,
			cp.Updated.UTC().Format(time.RFC3339),
		})
	}
	tw.Render()
	return nil
}

// ClearCheckpoints removes the checkpoints of the configured target. It
// takes the target lock so a running session keeps its checkpoints.
func (app *App) ClearCheckpoints() error {
	if err := app.Lock(); err != nil {
		return err
	}
	if err := app.OpenState(); err != nil {
		return err
	}
	n, err := checkpoints.ClearTarget(app.db, app.conf.Target.URL)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "cleared %d checkpoints of %s\n", n, app.conf.Target.URL)
	return nil
}

// History prints the latest n sessions.
func (app *App) History(n int) error {
	if err := app.OpenState(); err != nil {
		return err
	}
	latest, err := sessions.Latest(app.db, n)
	if err != nil {
		return err
	}
	if len(latest) == 0 {
		fmt.Fprintln(app.out, "no sessions")
		return nil
	}
	tw := app.newTable()
	tw.AppendHeader(table.Row{"id", "target", "started", "duration", "cores", "migrated", "status"})
	for _, s := range latest {
		migrated, inSync := 0, true
		for _, c := range s.Cores {
			migrated += c.Migrated
			inSync = inSync && c.InSync
		}
		duration := ""
		if !s.Finished.IsZero() {
			duration = s.Finished.Sub(s.Started).Round(time.Second).String()
		}
		status := s.Status
		if s.Status == sessions.StatusCompleted {
			status = syncStatus(inSync)
		}
		tw.AppendRow(table.Row{
			s.ID,
			s.Target,
			s.Started.UTC().Format(time.RFC3339),
			duration,
			strconv.Itoa(len(s.Cores)),
			migrated,
			status,
		})
	}
	tw.Render()
	return nil
}
