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
	"horse.fit/polyglot/internal/language"
	"horse.fit/polyglot/internal/speech"
)

func runSpeak(args []string) int {
	fs := flag.NewFlagSet("speak", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", time.Minute, "Command timeout")
	lang := fs.String("lang", "", "Language code of the text")
	out := fs.String("out", "", "Write decoded audio to this file instead of printing the locator")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	text := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "speak requires text")
		printSpeakUsage()
		return 2
	}
	entry, ok := language.Lookup(*lang)
	if !ok {
		fmt.Fprintln(os.Stderr, "--lang is required and must be a supported language code")
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	synth, err := speech.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure speech provider: %v\n", err)
		return 1
	}

	audio, err := synth.Synthesize(ctx, text, entry.Code)
	if err != nil {
		logger.Error().Err(err).Str("speech_provider", synth.Name()).Str("language", entry.Code).Msg("speech synthesis failed")
		fmt.Fprintf(os.Stderr, "Speech synthesis failed: %v\n", err)
		return 1
	}

	target := strings.TrimSpace(*out)
	if target == "" {
		fmt.Println(audio.Locator)
		return 0
	}

	if speech.IsSentinel(audio.Locator) {
		fmt.Fprintf(os.Stderr, "%s produces no audio file; the browser speaks the text itself\n", synth.Name())
		return 1
	}

	payload, mime, err := speech.DecodeAudio(audio.Locator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode audio: %v\n", err)
		return 1
	}
	if err := os.WriteFile(target, payload, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", target, err)
		return 1
	}

	fmt.Printf("wrote %s (%s, %d bytes, voice=%s)\n", target, mime, len(payload), audio.Voice)
	return 0
}

func printSpeakUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  polyglot speak --lang <lang> [--out file.mp3] [--env .env] [--timeout 1m] <text>")
}
