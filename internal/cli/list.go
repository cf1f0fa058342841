package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// ListCommand prints the saved words, newest first.
type ListCommand struct {
	storeFlags
	Verbose bool

	out io.Writer
}

func NewListCommand() *ListCommand {
	return &ListCommand{out: os.Stdout}
}

func (cmd *ListCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	cmd.register(fs)
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Also print the sentence of each word")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s list [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the words in the collection, newest first.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ListCommand) Run() error {
	ctx := context.Background()
	coll, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer coll.Close()

	result, err := coll.store.List(ctx)
	if err != nil {
		return err
	}

	for _, rec := range result.Records {
		if cmd.Verbose && rec.ExampleSentence != "" {
			fmt.Fprintf(cmd.out, "%s\t%s\n", rec.Word, strings.ReplaceAll(rec.ExampleSentence, "\n", " "))
			continue
		}
		fmt.Fprintln(cmd.out, rec.Word)
	}
	if cmd.Verbose {
		fmt.Fprintf(cmd.out, "\n%d words in %s (%s)\n", len(result.Records), coll.store.Path(), coll.store.Kind())
	}
	return nil
}
