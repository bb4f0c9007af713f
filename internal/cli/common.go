package cli

import (
	"fmt"
	"os"
)

// Version identifies this build of the runtime; reported by printBanner
// and the -v/--version flag, and embedded into the smoke program's banner
// string.
const (
	Version   = "0.1.0"
	BuildDate = "2025-08-22"
	CommitSHA = "unknown"
)

// ExitWithError prints a formatted error to stderr and exits with code 1,
// the path cmd/zephyr/main.go takes for a flag-parse or startup failure
// that has no RuntimeError (and so no zerrors.Exit code) to derive an
// exit status from.
func ExitWithError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// CommandInfo describes one line of printHelp's usage table.
type CommandInfo struct {
	Name        string
	Description string
}

// PrintUsage prints the runtime's top-level usage banner. Unlike a
// subcommand dispatcher (cmd/orizon's CommandInfo/FlagInfo table drives
// per-command help text across a dozen verbs), the runtime binary has
// exactly two invocation shapes, so commands only ever labels the two
// rows printHelp passes in.
func PrintUsage(tool string, commands []CommandInfo) {
	fmt.Printf("%s - Zephyr Language Tools\n\n", tool)
	fmt.Printf("USAGE:\n")
	fmt.Printf("    %s <command> [OPTIONS]\n\n", tool)

	if len(commands) > 0 {
		fmt.Printf("COMMANDS:\n")
		for _, cmd := range commands {
			fmt.Printf("    %-12s %s\n", cmd.Name, cmd.Description)
		}
		fmt.Printf("\n")
	}

	fmt.Printf("GLOBAL OPTIONS:\n")
	fmt.Printf("    --help, -h     Show help information\n")
	fmt.Printf("    --version, -v  Show version information\n")
	fmt.Printf("\n")
	fmt.Printf("Use '%s -h' to see this message again.\n", tool)
}
