package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/wordbook/internal/cli"
	"github.com/mrlokans/wordbook/internal/config"
	"github.com/mrlokans/wordbook/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every subcommand in internal/cli.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "list":
		cmd = cli.NewListCommand()
	case "add":
		cmd = cli.NewAddCommand()
	case "remove":
		cmd = cli.NewRemoveCommand()
	case "backup":
		cmd = cli.NewBackupCommand()
	case "restore":
		cmd = cli.NewRestoreCommand()
	case "export":
		cmd = cli.NewExportCommand()
	case "sync":
		cmd = cli.NewSyncCommand()

	case "version":
		fmt.Printf("%s (%s)\n", Version, Commit)
		return

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  list      Print the saved words\n")
	fmt.Fprintf(os.Stderr, "  add       Save a word with its sentence and screenshot\n")
	fmt.Fprintf(os.Stderr, "  remove    Remove a word\n")
	fmt.Fprintf(os.Stderr, "  backup    Pack the collection into a zip bundle\n")
	fmt.Fprintf(os.Stderr, "  restore   Restore words from a backup (merge or overwrite)\n")
	fmt.Fprintf(os.Stderr, "  export    Export as a word list, Anki import file or markdown\n")
	fmt.Fprintf(os.Stderr, "  sync      Enable, disable or run folder sync\n")
	fmt.Fprintf(os.Stderr, "  version   Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
