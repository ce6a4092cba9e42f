// Command porelog prints or converts pore log JSON files from the terminal.
//
// Usage:
//
//	porelog show [-sort col] [-desc] [-rows N] [-missing absent|falsy] file.json
//	porelog csv [-o out.csv|-] [-raw] [-missing absent|falsy] file.json
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/porelog/internal/core"
	"github.com/JonMunkholm/porelog/internal/logging"
	"github.com/JonMunkholm/porelog/internal/porelog"
	"github.com/JonMunkholm/porelog/internal/render"
)

const usage = `usage:
  porelog show [-sort col] [-desc] [-rows N] [-missing absent|falsy] file.json
  porelog csv [-o out.csv|-] [-raw] [-missing absent|falsy] file.json
`

var (
	errUsage     = errors.New("invalid usage")
	errOverwrite = errors.New("output would overwrite the input file")
)

func main() {
	// stdout carries CSV with -o -, so logs stay on stderr.
	slog.SetDefault(logging.New(os.Stderr, envOr("LOG_LEVEL", "warn"), envOr("LOG_FORMAT", "text")))

	os.Exit(report(os.Stderr, run(os.Args[1:], os.Stdout)))
}

// report prints err for the user and returns the exit status.
func report(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errUsage) {
		fmt.Fprint(stderr, usage)
		return 2
	}

	ue := core.NewUserError(err)
	slog.Debug("command failed", "error", ue.Technical)
	if core.IsUserFacing(err) {
		fmt.Fprintln(stderr, "porelog:", core.FormatUserError(ue.Technical))
	} else {
		fmt.Fprintln(stderr, "porelog:", ue.Technical)
	}
	return 1
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "show":
		return runShow(args[1:], stdout)
	case "csv":
		return runCSV(args[1:], stdout)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func runShow(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	sortBy := fs.String("sort", "", "column to sort records by")
	desc := fs.Bool("desc", false, "sort descending")
	rows := fs.Int("rows", 50, "maximum records to print (0 for all)")
	missing := fs.String("missing", "absent", "missing-value policy: absent or falsy")

	view, path, err := loadView(fs, args, missing)
	if err != nil {
		return err
	}
	if *sortBy != "" {
		view = view.SortedBy(*sortBy, *desc)
	}

	fmt.Fprintln(stdout, path)
	fmt.Fprintln(stdout, render.Meta(view.Meta))
	if view.HasTable() {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, render.Table(view, *rows))
	}
	return nil
}

func runCSV(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("csv", flag.ContinueOnError)
	out := fs.String("o", "", "output file, - for stdout (default: input path with .csv)")
	raw := fs.Bool("raw", false, "write fields without quoting")
	missing := fs.String("missing", "absent", "missing-value policy: absent or falsy")

	view, path, err := loadView(fs, args, missing)
	if err != nil {
		return err
	}

	mode := porelog.CSVQuoted
	if *raw {
		mode = porelog.CSVRaw
	}

	if *out == "-" {
		return porelog.WriteCSV(stdout, view, mode)
	}
	dest, err := csvDest(path, *out)
	if err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if err := porelog.WriteCSV(f, view, mode); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}
	slog.Info("csv written", "file", dest, "records", len(view.Rows))
	fmt.Fprintf(stdout, "wrote %d records to %s\n", len(view.Rows), dest)
	return nil
}

// csvDest picks the output path. The default sits next to the input; when
// that would be the input itself, ".table.csv" is used instead. An explicit
// output naming the input is refused.
func csvDest(input, out string) (string, error) {
	if out != "" {
		if sameFile(input, out) {
			return "", fmt.Errorf("%w: %s", errOverwrite, out)
		}
		return out, nil
	}
	dest := filepath.Join(filepath.Dir(input), porelog.CSVFilename(input))
	if sameFile(input, dest) {
		base := strings.TrimSuffix(filepath.Base(dest), filepath.Ext(dest))
		dest = filepath.Join(filepath.Dir(input), base+".table.csv")
	}
	return dest, nil
}

func sameFile(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// loadView parses flags, then loads and transforms the single file argument.
func loadView(fs *flag.FlagSet, args []string, missing *string) (porelog.View, string, error) {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return porelog.View{}, "", fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() != 1 {
		return porelog.View{}, "", fmt.Errorf("%w: expected one file", errUsage)
	}
	policy, ok := porelog.ParseMissingPolicy(*missing)
	if !ok {
		return porelog.View{}, "", fmt.Errorf("%w: unknown -missing %q", errUsage, *missing)
	}

	path := fs.Arg(0)
	doc, err := porelog.LoadFile(path)
	if err != nil {
		return porelog.View{}, "", fmt.Errorf("load %s: %w", path, err)
	}
	return porelog.TransformWith(doc, porelog.Options{Missing: policy}), path, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
