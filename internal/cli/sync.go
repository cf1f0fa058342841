package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/wordbook/internal/cloudsync"
)

// SyncCommand switches folder sync on or off, pulls the shared copy, or
// prints the current sync state.
type SyncCommand struct {
	storeFlags
	EnableDir string
	Disable   bool
	Now       bool
	Status    bool

	out io.Writer
}

func NewSyncCommand() *SyncCommand {
	return &SyncCommand{out: os.Stdout}
}

func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.EnableDir, "enable", "", "Turn sync on using this folder (e.g. a Dropbox or iCloud Drive folder)")
	fs.BoolVar(&cmd.Disable, "disable", false, "Turn sync off and use the local data directory again")
	fs.BoolVar(&cmd.Now, "now", false, "Reload the collection from the sync folder")
	fs.BoolVar(&cmd.Status, "status", false, "Print the sync state (default)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [-enable <dir> | -disable | -now | -status] [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Share the collection between devices through a synced folder.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	actions := 0
	for _, set := range []bool{cmd.EnableDir != "", cmd.Disable, cmd.Now} {
		if set {
			actions++
		}
	}
	if actions > 1 {
		return fmt.Errorf("use only one of -enable, -disable and -now")
	}
	if actions == 0 {
		cmd.Status = true
	}
	return nil
}

func (cmd *SyncCommand) Run() error {
	ctx := context.Background()
	coll, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer coll.Close()

	switch {
	case cmd.EnableDir != "":
		result, err := coll.sync.Enable(ctx, cmd.EnableDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.out, "Sync enabled: %s\n", result.SharedDir)
		fmt.Fprintf(cmd.out, "Migrated: %d added, %d updated, %d already there\n",
			result.Migrated.Added, result.Migrated.Updated, result.Migrated.Skipped)
	case cmd.Disable:
		if err := coll.sync.Disable(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.out, "Sync disabled, using local data")
	case cmd.Now:
		result, err := coll.sync.ForceSync(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.out, "Synced: %d words (was %d)\n", result.After, result.Before)
	}

	if cmd.Status {
		printSyncStatus(cmd.out, coll.sync.Status())
	}
	return nil
}

func printSyncStatus(w io.Writer, status cloudsync.Status) {
	state := "disabled"
	if status.Enabled {
		state = "enabled"
	}
	fmt.Fprintf(w, "Sync:    %s\n", state)
	if folder := status.FolderPath(); folder != "" {
		fmt.Fprintf(w, "Folder:  %s\n", folder)
	}
	fmt.Fprintf(w, "Store:   %s (%s)\n", status.StorePath, status.Backend)
	if status.LastSyncTime != nil {
		fmt.Fprintf(w, "Last:    %s\n", status.LastSyncTime.Local().Format(time.RFC1123))
	}
	if status.Warning != "" {
		fmt.Fprintf(w, "Warning: %s\n", status.Warning)
	}
}
