package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/nconklindev/dupecheck/internal/config"
	"github.com/nconklindev/dupecheck/internal/dupes"
	"github.com/nconklindev/dupecheck/internal/logging"
	"github.com/nconklindev/dupecheck/internal/sheet"
	"github.com/nconklindev/dupecheck/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup happens before exit.
func run(args []string) int {
	// Handle --version flag
	if len(args) > 0 && (args[0] == "--version" || args[0] == "-v") {
		fmt.Printf("dupecheck %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		return 0
	}

	fs := flag.NewFlagSet("dupecheck", flag.ContinueOnError)
	column := fs.String("column", "", "header label or zero-based index of the column to check (runs without the UI)")
	export := fs.String("export", "", "write the duplicates to this .xlsx or .csv file (headless mode)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// A missing .env file is not an error
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	headless := *column != ""

	// The UI owns stdout, so interactive logs go nowhere unless a file is set
	var fallback io.Writer = io.Discard
	if headless {
		fallback = os.Stderr
	}
	logOut, closeLog, err := logging.Open(cfg.Logging.File, fallback)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	defer closeLog()
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, logOut)

	if headless {
		if fs.NArg() != 1 {
			fmt.Println("Usage: dupecheck -column <name|index> [-export out.xlsx] <file>")
			return 2
		}
		if err := runHeadless(os.Stdout, fs.Arg(0), *column, *export); err != nil {
			slog.Error("check failed", "file", fs.Arg(0), "column", *column, "error", err)
			fmt.Printf("Error: %v\n", err)
			return 1
		}
		return 0
	}

	p := tea.NewProgram(ui.InitialModel(cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	return 0
}

func runHeadless(w io.Writer, path, column, exportPath string) error {
	doc, err := sheet.ParseFile(path)
	if err != nil {
		return err
	}

	idx, label, err := resolveColumn(doc, column)
	if err != nil {
		return err
	}

	res, err := dupes.Check(context.Background(), doc, idx, dupes.Discard)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %s rows, %s values in %q\n",
		path, humanize.Comma(int64(res.Rows)), humanize.Comma(int64(res.Values)), label)

	if res.Empty() {
		fmt.Fprintln(w, "No duplicates found in the selected column.")
	}
	for _, e := range res.Entries {
		fmt.Fprintf(w, "%s\t%s occurrences\n", e.Value, humanize.Comma(int64(e.Count)))
	}

	if exportPath != "" {
		if err := dupes.Export(exportPath, res, label); err != nil {
			return err
		}
		fmt.Fprintf(w, "Exported to %s\n", exportPath)
	}
	return nil
}

// resolveColumn matches a header label first, then a numeric index. A
// label resolves to the column it was read from; an index is used as is,
// the same way the interactive column list does.
func resolveColumn(doc *sheet.Document, column string) (int, string, error) {
	headers := doc.Headers()
	cols := doc.HeaderColumns()
	for i, h := range headers {
		if h == column {
			return cols[i], h, nil
		}
	}

	idx, err := strconv.Atoi(column)
	if err != nil {
		return 0, "", fmt.Errorf("%w: no header named %q", dupes.ErrInvalidColumn, column)
	}
	if idx < 0 || idx >= len(headers) {
		return 0, "", &dupes.ColumnError{Column: idx, Headers: len(headers)}
	}
	return idx, headers[idx], nil
}
