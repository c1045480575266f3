// Command seqidx is a thin demonstration CLI over package seqidx: build or
// reopen an index for one or more FASTA files and run a single query
// against it.
package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/havingwolf/seqidx"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args[1:]))
}

func run(out, errOut io.Writer, args []string) int {
	if len(args) < 2 {
		printUsage(errOut)
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "length":
		return cmdLength(out, errOut, rest)
	case "subseq":
		return cmdSubseq(out, errOut, rest)
	case "ids":
		return cmdIds(out, errOut, rest)
	default:
		fmt.Fprintf(errOut, "error: unknown subcommand %q\n", cmd)
		printUsage(errOut)
		return 2
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: seqidx <length|subseq|ids> --path=<file|dir> [options] [id|query]")
}

func commonFlags(fs *flag.FlagSet) (*string, *int, *bool) {
	path := fs.String("path", "", "source FASTA file or directory to index")
	maxOpen := fs.Int("max-open", 0, "file-handle cache capacity (0 = default)")
	reindex := fs.Bool("reindex", false, "force a full rebuild regardless of mtimes")
	return path, maxOpen, reindex
}

func openFromFlags(path string, maxOpen int, reindex bool) (*seqidx.Engine, error) {
	if path == "" {
		return nil, fmt.Errorf("seqidx: --path is required")
	}
	opts := []seqidx.Option{seqidx.WithReindex(reindex)}
	if maxOpen > 0 {
		opts = append(opts, seqidx.WithMaxOpen(maxOpen))
	}
	return seqidx.Open(path, opts...)
}

func cmdLength(out, errOut io.Writer, args []string) int {
	fs := flag.NewFlagSet("length", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path, maxOpen, reindex := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "error: length requires exactly one record id")
		return 2
	}

	eng, err := openFromFlags(*path, *maxOpen, *reindex)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer eng.Close()

	n, err := eng.Length(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	fmt.Fprintln(out, n)
	return 0
}

func cmdSubseq(out, errOut io.Writer, args []string) int {
	fs := flag.NewFlagSet("subseq", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path, maxOpen, reindex := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "error: subseq requires exactly one query (e.g. chr1:1,100 or a bare id)")
		return 2
	}

	eng, err := openFromFlags(*path, *maxOpen, *reindex)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer eng.Close()

	b, _, err := eng.SubseqQuery(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	out.Write(b)
	fmt.Fprintln(out)
	return 0
}

func cmdIds(out, errOut io.Writer, args []string) int {
	fs := flag.NewFlagSet("ids", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path, maxOpen, reindex := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 2
	}

	eng, err := openFromFlags(*path, *maxOpen, *reindex)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer eng.Close()

	for id := range eng.Ids() {
		fmt.Fprintln(out, id)
	}
	return 0
}
