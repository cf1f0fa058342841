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
	"github.com/mrlokans/wordbook/internal/audit"
)

// RestoreCommand loads a zip bundle or a JSON backup into the collection.
type RestoreCommand struct {
	storeFlags
	Input    string
	Mode     string
	DryRun   bool
	AuditDir string

	mode archive.Mode
	out  io.Writer
}

func NewRestoreCommand() *RestoreCommand {
	return &RestoreCommand{out: os.Stdout}
}

func (cmd *RestoreCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.Input, "file", "", "Backup bundle (.zip) or JSON backup (required)")
	fs.StringVar(&cmd.Mode, "mode", string(archive.ModeMerge), "merge keeps existing words, overwrite replaces them")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the backup without changing the collection")
	fs.StringVar(&cmd.AuditDir, "audit", "", "Audit directory for the pre-overwrite snapshot (default: <data>/audit)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s restore -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Restore words from a backup.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Input == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	mode, err := archive.ParseMode(cmd.Mode)
	if err != nil {
		return err
	}
	cmd.mode = mode
	if cmd.AuditDir == "" {
		cmd.AuditDir = filepath.Join(cmd.DataDir, "audit")
	}
	return nil
}

func (cmd *RestoreCommand) Run() error {
	records, doc, err := archive.UnpackFile(cmd.Input)
	if err != nil {
		return err
	}
	if doc.Metadata != nil {
		fmt.Fprintf(cmd.out, "Backup %s: %d words (version %s)\n", cmd.Input, len(records), doc.Metadata.Version)
	} else {
		fmt.Fprintf(cmd.out, "Backup %s: %d words (legacy list)\n", cmd.Input, len(records))
	}

	if cmd.DryRun {
		fmt.Fprintln(cmd.out, "Dry run, nothing restored")
		return nil
	}

	ctx := context.Background()
	coll, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer coll.Close()

	auditService := audit.NewService(cmd.AuditDir)
	defer auditService.Wait()

	if cmd.mode == archive.ModeOverwrite {
		name, err := archive.Snapshot(ctx, coll.store, auditService, cmd.AppName, time.Now())
		if err != nil {
			auditService.LogRestore(string(cmd.mode), cmd.Input, 0, 0, 0, 0, err)
			return err
		}
		if name != "" {
			fmt.Fprintf(cmd.out, "Saved current words to snapshot %s\n", name)
		}
	}

	result, err := archive.Restore(ctx, coll.store, records, cmd.mode)
	if err != nil {
		auditService.LogRestore(string(cmd.mode), cmd.Input, 0, 0, 0, 0, err)
		return err
	}
	auditService.LogRestore(string(cmd.mode), cmd.Input, result.Added, result.Updated, result.Skipped, result.Failed, nil)
	fmt.Fprintf(cmd.out, "Restored (%s): %d added, %d updated, %d skipped, %d failed\n",
		result.Mode, result.Added, result.Updated, result.Skipped, result.Failed)
	for _, msg := range result.Errors {
		fmt.Fprintf(cmd.out, "  %s\n", msg)
	}
	return nil
}
