package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"horse.fit/polyglot/internal/language"
)

func runLanguages(args []string) int {
	fs := flag.NewFlagSet("languages", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	entries := language.Entries()
	if outputFormat == outputFormatJSON {
		if err := printJSON(entries); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			return 1
		}
		return 0
	}

	if err := writeTable([]string{"CODE", "NAME", "SERVICE LOCALE", "VOICE", "ENGINE"}, languageRows(entries)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return 1
	}
	return 0
}

func languageRows(entries []language.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{entry.Code, entry.Name, entry.Locale, entry.Voice, entry.Engine})
	}
	return rows
}
