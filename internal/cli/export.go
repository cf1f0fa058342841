package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/wordbook/internal/exporters"
	"github.com/mrlokans/wordbook/internal/storage"
)

// ExportCommand writes the collection as a word list, an Anki import file
// or markdown. With -vault the markdown goes straight into an Obsidian vault
// together with the screenshots.
type ExportCommand struct {
	storeFlags
	Format    string
	Output    string
	Deck      string
	VaultDir  string
	VaultPath string

	out io.Writer
	now func() time.Time
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{out: os.Stdout, now: time.Now}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.Format, "format", string(exporters.FormatText), "Export format: txt, anki or markdown")
	fs.StringVar(&cmd.Output, "output", "", "Output file or directory (default: current directory)")
	fs.StringVar(&cmd.Deck, "deck", "", "Deck or note title (default: <app>_<date>)")
	fs.StringVar(&cmd.VaultDir, "vault", "", "Obsidian vault directory (markdown only)")
	fs.StringVar(&cmd.VaultPath, "vault-path", "Vocabulary", "Folder inside the vault")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export the collection for studying elsewhere.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export -format anki -output ~/Desktop\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s export -format markdown -vault ~/Obsidian/Main\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.VaultDir != "" && exporters.Format(cmd.Format) != exporters.FormatMarkdown {
		return fmt.Errorf("-vault requires -format markdown")
	}
	if _, err := exporters.New(exporters.Format(cmd.Format), ""); err != nil {
		return err
	}
	return nil
}

func (cmd *ExportCommand) Run() error {
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
	if len(records) == 0 {
		fmt.Fprintln(cmd.out, "No words to export")
		return nil
	}

	deck := cmd.Deck
	if deck == "" {
		deck = exporters.DeckName(cmd.AppName, cmd.now())
	}

	if cmd.VaultDir != "" {
		vault := exporters.NewVaultExporter(cmd.VaultDir, cmd.VaultPath, deck)
		vault.Now = cmd.now
		outputPath, result, err := vault.Export(records)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.out, "Exported %d words (%d images) to %s\n", result.WordsProcessed, result.ImagesIncluded, outputPath)
		return nil
	}

	exporter, err := exporters.New(exporters.Format(cmd.Format), deck)
	if err != nil {
		return err
	}
	if md, ok := exporter.(*exporters.MarkdownExporter); ok {
		md.Now = cmd.now
	}

	outputPath := exporters.FileName(exporter, deck)
	if cmd.Output != "" {
		outputPath = cmd.Output
		if storage.IsDir(cmd.Output) {
			outputPath = filepath.Join(cmd.Output, exporters.FileName(exporter, deck))
		}
	}

	writer, err := storage.NewAtomicWriter(outputPath)
	if err != nil {
		return err
	}
	result, err := exporter.Export(writer, records)
	if err != nil {
		writer.Abort()
		return fmt.Errorf("failed to export: %w", err)
	}
	if err := writer.Commit(); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	fmt.Fprintf(cmd.out, "Exported %d words to %s\n", result.WordsProcessed, outputPath)
	return nil
}
