package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paularlott/cli"

	"github.com/inventar-app/inventar-core/internal/export"
)

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:        "convert",
		Usage:       "Convert a worksheet to CSV",
		Description: "Convert one worksheet of an XLSX workbook to CSV with the configured delimiter and encoding",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "in",
				Usage:    "XLSX workbook to read",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "sheet",
				Usage: "Worksheet name (default: the active sheet)",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "CSV file to write; - writes to stdout (default: input name with .csv)",
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			opts := export.OptionsFromConfig(e.cfg.Export, e.cfg.GetLocation())
			return convertWorkbook(cmd.GetString("in"), cmd.GetString("sheet"), cmd.GetString("out"), opts, e.out)
		},
	}
}

func convertWorkbook(in, sheet, out string, opts export.Options, stdout io.Writer) error {
	src, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("opening %s: %w", in, err)
	}
	defer src.Close()

	if out == "-" {
		_, err := export.ConvertSheet(src, sheet, stdout, opts)
		return err
	}
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".csv"
	}

	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	n, err := export.ConvertSheet(src, sheet, dst, opts)
	if err != nil {
		dst.Close()        //nolint:errcheck // Already failing
		_ = os.Remove(out) //nolint:errcheck // Best effort cleanup
		return err
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", out, err)
	}

	fmt.Fprintf(stdout, "converted %d row(s) to %s\n", n, out)
	return nil
}
