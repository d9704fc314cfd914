// Command guidance measures lane clearance in a dash-cam video, writes an
// annotated copy, and optionally records the run for the HTTP API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/banshee-data/laneguide/internal/db"
	"github.com/banshee-data/laneguide/internal/version"
)

const defaultDBFile = "laneguide.db"

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout)
	if code := exitCode(err); code != 0 {
		log.Printf("guidance: %v", err)
		os.Exit(code)
	}
}

func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage), errors.Is(err, db.ErrUsage):
		return 2
	default:
		return 1
	}
}

// run dispatches to a subcommand. A leading flag or no arguments selects the
// default run command.
func run(args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return runCommand(args, in, out)
	}
	switch args[0] {
	case "run":
		return runCommand(args[1:], in, out)
	case "serve":
		return serveCommand(args[1:], out)
	case "migrate":
		return migrateCommand(args[1:], in, out)
	case "version":
		fmt.Fprintln(out, version.String())
		return nil
	case "help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: guidance [run] -video <file> [flags]")
	fmt.Fprintln(out, "       guidance serve [-listen :8080] [-db "+defaultDBFile+"]")
	fmt.Fprintln(out, "       guidance migrate [-db "+defaultDBFile+"] <action> [args]")
	fmt.Fprintln(out, "       guidance version")
}

func runCommand(args []string, in io.Reader, out io.Writer) error {
	o, err := parseRunFlags(args, out)
	if err != nil {
		return err
	}
	if o.version {
		fmt.Fprintln(out, version.String())
		return nil
	}
	return runGuidance(o, in, out)
}

func migrateCommand(args []string, in io.Reader, out io.Writer) error {
	o, err := parseMigrateFlags(args, out)
	if err != nil {
		return err
	}
	db.DevMode = o.dev
	cmd := &db.MigrateCommand{DBPath: o.dbPath, In: in, Out: out}
	return cmd.Run(o.args)
}
