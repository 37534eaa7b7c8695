package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/paularlott/cli"

	"github.com/inventar-app/inventar-core/internal/infrastructure/database"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Usage:       "Schema migrations",
		Description: "Apply, roll back or inspect database migrations",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Run: func(ctx context.Context, cmd *cli.Command) error {
					e, err := newEnv(cmd)
					if err != nil {
						return err
					}
					return e.withDatabase(ctx, func(db *database.DB) error {
						return migrateUp(ctx, db, e.out)
					})
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Run: func(ctx context.Context, cmd *cli.Command) error {
					e, err := newEnv(cmd)
					if err != nil {
						return err
					}
					return e.withDatabase(ctx, func(db *database.DB) error {
						return migrateDown(ctx, db, e.out)
					})
				},
			},
			{
				Name:  "status",
				Usage: "List applied and pending migrations",
				Run: func(ctx context.Context, cmd *cli.Command) error {
					e, err := newEnv(cmd)
					if err != nil {
						return err
					}
					return e.withDatabase(ctx, func(db *database.DB) error {
						return migrateStatus(ctx, db, e.out)
					})
				},
			},
		},
	}
}

func migrateUp(ctx context.Context, db *database.DB, w io.Writer) error {
	_, pending, err := db.GetMigrationStatus(ctx)
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	fmt.Fprintf(w, "applied %d migration(s)\n", len(pending))
	return nil
}

func migrateDown(ctx context.Context, db *database.DB, w io.Writer) error {
	applied, _, err := db.GetMigrationStatus(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(w, "nothing to roll back")
		return nil
	}
	if err := db.MigrateDown(ctx); err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}
	fmt.Fprintf(w, "rolled back %s\n", applied[len(applied)-1].Version)
	return nil
}

func migrateStatus(ctx context.Context, db *database.DB, w io.Writer) error {
	applied, pending, err := db.GetMigrationStatus(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "driver: %s\n", db.Driver())
	for _, m := range applied {
		fmt.Fprintf(w, "applied  %s  %s\n", m.Version, m.AppliedAt.Format(time.RFC3339))
	}
	for _, m := range pending {
		fmt.Fprintf(w, "pending  %s  %s\n", m.Version, m.Name)
	}
	return nil
}
