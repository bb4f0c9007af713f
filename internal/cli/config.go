package cli

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// RuntimeConfig is the flag-plus-environment configuration spec §6.2
// describes for the command-line entry point: an optimization level, a
// handful of boolean toggles, and four ZEPHYR*-prefixed environment
// variables layered underneath the flags.
type RuntimeConfig struct {
	SourcePath  string   // positional argument, empty when -c is used
	CommandStr  string   // -c CMD
	Interactive bool     // -i: drop into a REPL after running SourcePath/CommandStr
	OptLevel    int      // -O {0..3}
	Quiet       bool     // -q: suppress the startup banner
	Unbuffered  bool     // -u, or ZEPHYRUNBUFFERED
	NoGC        bool     // --nogc: disable the tracing collector, refcounting only
	PrintStack  bool     // --pst: print a stack trace on an uncaught panic
	MaxVCores   int      // ZEPHYRMAXVC, 0 means runtime.GOMAXPROCS(0)
	ModulePath  []string // ZEPHYRPATH, OS-path-separator-delimited
	Startup     string   // ZEPHYRSTARTUP, run before an interactive session

	// Args are the trailing arguments forwarded to the running program,
	// reachable from Zephyr code as the process argument vector.
	Args []string
}

// ParseArgs parses argv (excluding the program name) against spec
// §6.2's flag set, then layers the ZEPHYR* environment variables under
// whatever the flags didn't set. An unrecognized flag is reported as an
// error rather than exiting directly, so callers control the exit code
// and message the way cmd/zephyr's main does.
func ParseArgs(argv []string) (*RuntimeConfig, error) {
	fs := flag.NewFlagSet("zephyr", flag.ContinueOnError)
	fs.SetOutput(discardWriter{})

	interactive := fs.Bool("i", false, "enter an interactive session after running")
	optLevel := fs.Int("O", 1, "optimization level, 0-3")
	quiet := fs.Bool("q", false, "suppress the startup banner")
	unbuffered := fs.Bool("u", false, "force unbuffered stdout")
	noGC := fs.Bool("nogc", false, "disable the tracing collector")
	printStack := fs.Bool("pst", false, "print a stack trace on an uncaught panic")
	command := fs.String("c", "", "run CMD as the program source instead of a file")
	var help, version bool
	fs.BoolVar(&help, "help", false, "show help information")
	fs.BoolVar(&help, "h", false, "show help information")
	fs.BoolVar(&version, "version", false, "show version information")
	fs.BoolVar(&version, "v", false, "show version information")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	if help {
		return nil, flag.ErrHelp
	}
	if version {
		fmt.Printf("zephyr %s\n", Version)
		return nil, flag.ErrHelp
	}
	if *optLevel < 0 || *optLevel > 3 {
		return nil, fmt.Errorf("-O must be between 0 and 3, got %d", *optLevel)
	}

	cfg := &RuntimeConfig{
		CommandStr:  *command,
		Interactive: *interactive,
		OptLevel:    *optLevel,
		Quiet:       *quiet,
		Unbuffered:  *unbuffered,
		NoGC:        *noGC,
		PrintStack:  *printStack,
	}

	rest := fs.Args()
	if cfg.CommandStr == "" && len(rest) > 0 {
		cfg.SourcePath = rest[0]
		rest = rest[1:]
	}
	cfg.Args = rest

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv layers the ZEPHYR* environment variables spec §6.2 names
// (renamed from the original's <LANG>-prefixed variables) under the
// flag-derived defaults: Unbuffered can additionally be turned on by
// ZEPHYRUNBUFFERED, and MaxVCores/ModulePath/Startup have no flag
// equivalent at all.
func (c *RuntimeConfig) applyEnv() {
	if v := os.Getenv("ZEPHYRUNBUFFERED"); v != "" {
		c.Unbuffered = true
	}
	if v := os.Getenv("ZEPHYRMAXVC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxVCores = n
		}
	}
	if c.MaxVCores == 0 {
		c.MaxVCores = runtime.GOMAXPROCS(0)
	}
	if v := os.Getenv("ZEPHYRPATH"); v != "" {
		c.ModulePath = strings.Split(v, string(os.PathListSeparator))
	}
	c.Startup = os.Getenv("ZEPHYRSTARTUP")
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
