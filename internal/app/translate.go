package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/polyglot/internal/cli"
	"horse.fit/polyglot/internal/translation"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	from := fs.String("from", "auto", "Source language code, or auto to detect")
	to := fs.String("to", "", "Target language code (for example: es, zh-TW)")
	prefer := fs.String("prefer", "primary", "Where the chain starts: primary or secondary")
	format := fs.String("format", "text", "Output format: text or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	text := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "translate requires text to translate")
		printTranslateUsage()
		return 2
	}

	preferred, err := translation.ParsePreference(*prefer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "--prefer: %v\n", err)
		return 2
	}

	req, err := translation.NewRequest(text, *from, *to, preferred)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid request: %v\n", err)
		printTranslateUsage()
		return 2
	}

	outputFormat := strings.ToLower(strings.TrimSpace(*format))
	if outputFormat != "text" && outputFormat != outputFormatJSON {
		fmt.Fprintln(os.Stderr, "--format must be text or json")
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pipeline, _, err := translation.NewPipelineFromConfig(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure translation providers: %v\n", err)
		return 1
	}

	result := pipeline.Translate(ctx, req)

	if outputFormat == outputFormatJSON {
		if err := printJSON(result); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Println(result.TranslatedText)
	fmt.Fprintf(
		os.Stderr,
		"tier=%s provider=%s source=%s target=%s attempts=%d\n",
		result.ProviderUsed,
		result.ProviderName,
		result.SourceLanguage,
		result.TargetLanguage,
		len(result.Attempts),
	)
	return 0
}

func printTranslateUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  polyglot translate --to <lang> [--from auto] [--prefer primary|secondary] [--format text|json] [--env .env] [--timeout 2m] <text>")
}
