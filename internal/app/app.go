package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "serve":
		return runServe(args[1:])
	case "translate":
		return runTranslate(args[1:])
	case "speak":
		return runSpeak(args[1:])
	case "languages":
		return runLanguages(args[1:])
	case "health":
		return runHealth(args[1:])
	case "create-user":
		return runCreateUser(args[1:])
	case "daemon":
		return runDaemon(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "polyglot CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  polyglot <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  serve        Start the web server and API")
	fmt.Fprintln(os.Stderr, "  translate    Translate text through the provider fallback chain")
	fmt.Fprintln(os.Stderr, "  speak        Synthesize speech for text")
	fmt.Fprintln(os.Stderr, "  languages    List supported languages")
	fmt.Fprintln(os.Stderr, "  health       Verify database and provider configuration")
	fmt.Fprintln(os.Stderr, "  create-user  Create a login account")
	fmt.Fprintln(os.Stderr, "  daemon       Manage the systemd service (install|uninstall|start|stop|restart|status)")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"polyglot <command> -h\" for command-specific flags.")
}
