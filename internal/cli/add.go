package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/wordbook/internal/assets"
	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/wordstore"
)

// AddCommand saves one word with an optional sentence and screenshot.
type AddCommand struct {
	storeFlags
	Word      string
	Sentence  string
	ImagePath string

	out io.Writer
}

func NewAddCommand() *AddCommand {
	return &AddCommand{out: os.Stdout}
}

func (cmd *AddCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.Word, "word", "", "Word to save (required)")
	fs.StringVar(&cmd.Sentence, "sentence", "", "Subtitle line the word came from")
	fs.StringVar(&cmd.ImagePath, "image", "", "Screenshot file to attach")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s add -word <word> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Save a word to the collection.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s add -word serendipity -sentence \"What a serendipity!\" -image frame.jpg\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Word == "" && fs.NArg() > 0 {
		cmd.Word = fs.Arg(0)
	}
	if cmd.Word == "" {
		return fmt.Errorf("required flag -word not provided")
	}
	return nil
}

func (cmd *AddCommand) Run() error {
	rec := &entities.WordRecord{Word: cmd.Word, ExampleSentence: cmd.Sentence}
	if cmd.ImagePath != "" {
		data, err := os.ReadFile(cmd.ImagePath)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		rec.Screenshot = assets.EncodeDataURI(data)
	}

	ctx := context.Background()
	coll, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer coll.Close()

	if err := coll.store.Add(ctx, rec); err != nil {
		if errors.Is(err, wordstore.ErrDuplicateKey) {
			fmt.Fprintf(cmd.out, "%q is already in your collection\n", cmd.Word)
			return nil
		}
		return err
	}
	fmt.Fprintf(cmd.out, "Added %q\n", rec.Word)
	return nil
}
