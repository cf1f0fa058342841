package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/wordbook/internal/archive"
)

// BackupCommand writes the collection to a zip bundle.
type BackupCommand struct {
	storeFlags
	Output string

	out io.Writer
	now func() time.Time
}

func NewBackupCommand() *BackupCommand {
	return &BackupCommand{out: os.Stdout, now: time.Now}
}

func (cmd *BackupCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.Output, "output", "", "Bundle path or directory (default: <app>_backup_<time>.zip in the current directory)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s backup [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Pack every word and screenshot into a zip bundle.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *BackupCommand) target() string {
	name := archive.FileName(cmd.AppName, cmd.now())
	if cmd.Output == "" {
		return name
	}
	if info, err := os.Stat(cmd.Output); err == nil && info.IsDir() {
		return filepath.Join(cmd.Output, name)
	}
	return cmd.Output
}

func (cmd *BackupCommand) Run() error {
	ctx := context.Background()
	coll, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer coll.Close()

	records, err := coll.store.Records(ctx)
	if err != nil {
		return err
	}

	target := cmd.target()
	result, err := archive.PackFile(ctx, records, target, archive.Options{AppName: cmd.AppName, Now: cmd.now})
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	fmt.Fprintf(cmd.out, "Backed up %d words and %d images to %s\n", result.Words, result.Images, target)
	return nil
}
