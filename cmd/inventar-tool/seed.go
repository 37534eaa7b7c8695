package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/paularlott/cli"
	"gopkg.in/yaml.v3"

	"github.com/inventar-app/inventar-core/internal/infrastructure/database"
	"github.com/inventar-app/inventar-core/internal/inventory"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:        "seed",
		Usage:       "Load reference data",
		Description: "Insert device types, locations and persons from a YAML file. Existing keys are kept.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "YAML file with devicetypes, locations and persons",
				Required: true,
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			data, err := readReferenceData(cmd.GetString("file"))
			if err != nil {
				return err
			}
			return e.withDatabase(ctx, func(db *database.DB) error {
				if err := db.Migrate(ctx); err != nil {
					return fmt.Errorf("running migrations: %w", err)
				}
				manager := inventory.NewManager(inventory.NewSQLRepository(db), nil, nil, e.log)
				return seed(ctx, manager, data, e.out)
			})
		},
	}
}

// readReferenceData decodes a reference data file. Unknown keys are
// rejected so a typo does not silently seed nothing.
func readReferenceData(path string) (inventory.ReferenceData, error) {
	var data inventory.ReferenceData

	f, err := os.Open(path)
	if err != nil {
		return data, fmt.Errorf("opening reference data: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return data, fmt.Errorf("parsing reference data: %w", err)
	}
	return data, nil
}

type seeder interface {
	SeedReferenceData(ctx context.Context, data inventory.ReferenceData) (inventory.SeedResult, error)
}

func seed(ctx context.Context, s seeder, data inventory.ReferenceData, w io.Writer) error {
	res, err := s.SeedReferenceData(ctx, data)
	if err != nil {
		return fmt.Errorf("seeding reference data: %w", err)
	}
	fmt.Fprintf(w, "inserted %d device type(s), %d location(s), %d person(s)\n",
		res.DeviceTypes, res.Locations, res.Persons)
	return nil
}
