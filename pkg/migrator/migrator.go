// Package migrator applies the embedded goose migrations of the document store.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Command is a goose command accepted by the migrate binary.
type Command string

const (
	CmdUp      Command = "up"
	CmdDown    Command = "down"
	CmdStatus  Command = "status"
	CmdVersion Command = "version"
)

// ParseCommand maps a CLI argument to a Command; empty means up.
func ParseCommand(arg string) (Command, error) {
	switch c := Command(arg); c {
	case "":
		return CmdUp, nil
	case CmdUp, CmdDown, CmdStatus, CmdVersion:
		return c, nil
	default:
		return "", fmt.Errorf("unknown migrate command %q (want up, down, status or version)", arg)
	}
}

// Run opens dbURL and runs cmd with the migrations in files. For
// CmdVersion the current schema version is returned; it is -1 otherwise.
func Run(ctx context.Context, dbURL string, files fs.FS, cmd Command) (int64, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return -1, fmt.Errorf("open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if err := prepare(files); err != nil {
		return -1, err
	}
	switch cmd {
	case CmdUp:
		err = goose.UpContext(ctx, db, ".")
	case CmdDown:
		err = goose.DownContext(ctx, db, ".")
	case CmdStatus:
		err = goose.StatusContext(ctx, db, ".")
	case CmdVersion:
		v, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return -1, fmt.Errorf("migrate version: %w", err)
		}
		return v, nil
	default:
		return -1, fmt.Errorf("unknown migrate command %q", cmd)
	}
	if err != nil {
		return -1, fmt.Errorf("migrate %s: %w", cmd, err)
	}
	return -1, nil
}

// Up applies pending migrations on an open connection. The postgres
// integration tests call it against their scratch database.
func Up(db *sql.DB, files fs.FS) error {
	if err := prepare(files); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func prepare(files fs.FS) error {
	goose.SetBaseFS(files)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}
