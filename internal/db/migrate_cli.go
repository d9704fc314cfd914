package db

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
)

// ErrUsage is returned for a malformed migrate command line. Help has
// already been printed.
var ErrUsage = errors.New("migrate: usage")

// MigrateCommand runs the 'migrate' subcommand against one database.
type MigrateCommand struct {
	DBPath string
	In     io.Reader // confirmation for force
	Out    io.Writer
}

// Run dispatches args[0] as the migrate action.
func (c *MigrateCommand) Run(args []string) error {
	if len(args) < 1 {
		c.PrintHelp()
		return ErrUsage
	}
	action := args[0]
	if action == "help" {
		c.PrintHelp()
		return nil
	}

	migrations, err := MigrationsFS()
	if err != nil {
		return err
	}
	// OpenDB, not NewDB: migrations own the schema here.
	database, err := OpenDB(c.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	switch action {
	case "up":
		return c.up(database, migrations)
	case "down":
		return c.down(database, migrations)
	case "status":
		return c.status(database, migrations)
	case "version":
		if len(args) < 2 {
			fmt.Fprintln(c.Out, "Usage: guidance migrate version <version_number>")
			return ErrUsage
		}
		return c.to(database, migrations, args[1])
	case "force":
		if len(args) < 2 {
			fmt.Fprintln(c.Out, "Usage: guidance migrate force <version_number>")
			return ErrUsage
		}
		return c.force(database, migrations, args[1])
	default:
		fmt.Fprintf(c.Out, "Unknown migrate action: %s\n\n", action)
		c.PrintHelp()
		return ErrUsage
	}
}

func (c *MigrateCommand) up(database *DB, migrations fs.FS) error {
	fmt.Fprintln(c.Out, "Running migrations...")
	if err := database.MigrateUp(migrations); err != nil {
		return err
	}
	version, dirty, _ := database.MigrateVersion(migrations)
	fmt.Fprintf(c.Out, "✓ All migrations applied. Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

func (c *MigrateCommand) down(database *DB, migrations fs.FS) error {
	fmt.Fprintln(c.Out, "Rolling back one migration...")
	if err := database.MigrateDown(migrations); err != nil {
		return err
	}
	version, dirty, _ := database.MigrateVersion(migrations)
	fmt.Fprintf(c.Out, "✓ Migration rolled back. Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

func (c *MigrateCommand) status(database *DB, migrations fs.FS) error {
	st, err := database.GetMigrationStatus(migrations)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Out, "=== Migration Status ===")
	fmt.Fprintf(c.Out, "Current version: %d\n", st.CurrentVersion)
	fmt.Fprintf(c.Out, "Latest version: %d\n", st.LatestVersion)
	fmt.Fprintf(c.Out, "Pending: %d\n", st.Pending())
	fmt.Fprintf(c.Out, "Dirty: %v\n", st.Dirty)
	fmt.Fprintf(c.Out, "Schema migrations table exists: %v\n", st.TableExists)
	if st.Dirty {
		fmt.Fprintln(c.Out, "\n⚠️  WARNING: Database is in a dirty state!")
		fmt.Fprintln(c.Out, "A migration failed mid-execution. Inspect the database, fix it, then run:")
		fmt.Fprintln(c.Out, "  guidance migrate force <version>")
	}
	return nil
}

func (c *MigrateCommand) to(database *DB, migrations fs.FS, arg string) error {
	target, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid version number: %s", arg)
	}
	fmt.Fprintf(c.Out, "Migrating to version %d...\n", target)
	if err := database.MigrateTo(migrations, uint(target)); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "✓ Migrated to version %d\n", target)
	return nil
}

func (c *MigrateCommand) force(database *DB, migrations fs.FS, arg string) error {
	version, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid version number: %s", arg)
	}

	fmt.Fprintf(c.Out, "⚠️  WARNING: Forcing migration version to %d\n", version)
	fmt.Fprintln(c.Out, "This should only be used to recover from a dirty migration state.")
	fmt.Fprint(c.Out, "Continue? [y/N]: ")

	response := ""
	if c.In != nil {
		line, _ := bufio.NewReader(c.In).ReadString('\n')
		response = strings.TrimSpace(line)
	}
	if response != "y" && response != "Y" {
		fmt.Fprintln(c.Out, "Aborted")
		return nil
	}

	if err := database.MigrateForce(migrations, version); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "✓ Migration version forced to %d\n", version)
	return nil
}

// PrintHelp writes the migrate usage text.
func (c *MigrateCommand) PrintHelp() {
	fmt.Fprint(c.Out, `Usage: guidance migrate <action> [args]

Actions:
  up              Apply all pending migrations
  down            Roll back the most recent migration
  status          Show current and latest schema versions
  version <N>     Migrate up or down to version N
  force <N>       Set the recorded version to N without running migrations
                  (recovery from a dirty state only)
  help            Show this help
`)
}
