package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
)

type RemoveCommand struct {
	storeFlags
	Word string

	out io.Writer
}

func NewRemoveCommand() *RemoveCommand {
	return &RemoveCommand{out: os.Stdout}
}

func (cmd *RemoveCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.Word, "word", "", "Word to remove (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s remove -word <word> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Remove a word and its screenshot from the collection.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
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

func (cmd *RemoveCommand) Run() error {
	ctx := context.Background()
	coll, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer coll.Close()

	if err := coll.store.Remove(ctx, cmd.Word); err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "Removed %q\n", cmd.Word)
	return nil
}
