package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/paularlott/cli"

	"github.com/inventar-app/inventar-core/internal/export"
	"github.com/inventar-app/inventar-core/internal/infrastructure/database"
	"github.com/inventar-app/inventar-core/internal/inventory"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:        "export",
		Usage:       "Export assignment history",
		Description: "Write the assignment history as CSV or XLSX using the export settings from the config file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "format",
				Usage:        "Output format: csv or xlsx",
				DefaultValue: "csv",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output file or directory; - writes to stdout (default: dated file in the current directory)",
			},
			&cli.IntFlag{
				Name:  "personnel-no",
				Usage: "Only assignments of this person",
			},
			&cli.IntFlag{
				Name:  "device-id",
				Usage: "Only assignments of this device",
			},
			&cli.BoolFlag{
				Name:  "open-only",
				Usage: "Only assignments that have not been returned",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of rows (0 for all)",
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			format, err := export.ParseFormat(cmd.GetString("format"))
			if err != nil {
				return err
			}

			filter := inventory.ExportFilter{
				OpenOnly: cmd.GetBool("open-only"),
				Limit:    cmd.GetInt("limit"),
			}
			if v := cmd.GetInt("personnel-no"); v > 0 {
				pn := int64(v)
				filter.PersonnelNo = &pn
			}
			if v := cmd.GetInt("device-id"); v > 0 {
				id := int64(v)
				filter.DeviceID = &id
			}

			opts := export.OptionsFromConfig(e.cfg.Export, e.cfg.GetLocation())
			return e.withDatabase(ctx, func(db *database.DB) error {
				manager := inventory.NewManager(inventory.NewSQLRepository(db), nil, nil, e.log)
				return exportAssignments(ctx, manager, exportJob{
					Format: format,
					Filter: filter,
					Opts:   opts,
					Out:    cmd.GetString("out"),
					Now:    time.Now(),
				}, e.out)
			})
		},
	}
}

type assignmentExporter interface {
	ExportAssignments(ctx context.Context, f inventory.ExportFilter) ([]inventory.AssignmentRecord, error)
}

type exportJob struct {
	Format export.Format
	Filter inventory.ExportFilter
	Opts   export.Options
	Out    string
	Now    time.Time
}

// exportAssignments writes the filtered history to job.Out. An empty Out
// writes a dated file to the current directory and a directory Out
// writes the dated file inside it. Messages go to stdout unless the
// export itself does.
func exportAssignments(ctx context.Context, src assignmentExporter, job exportJob, stdout io.Writer) error {
	records, err := src.ExportAssignments(ctx, job.Filter)
	if err != nil {
		return fmt.Errorf("querying assignments: %w", err)
	}

	if job.Out == "-" {
		return export.Write(stdout, job.Format, records, job.Opts)
	}

	path := exportPath(job)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.Write(f, job.Format, records, job.Opts); err != nil {
		f.Close()           //nolint:errcheck // Already failing
		_ = os.Remove(path) //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	fmt.Fprintf(stdout, "exported %d assignment(s) to %s\n", len(records), path)
	return nil
}

func exportPath(job exportJob) string {
	loc := job.Opts.Location
	if loc == nil {
		loc = time.UTC
	}
	name := export.FileName("assignments", job.Format, job.Now.In(loc))
	if job.Out == "" {
		return name
	}
	if info, err := os.Stat(job.Out); err == nil && info.IsDir() {
		return filepath.Join(job.Out, name)
	}
	return job.Out
}
