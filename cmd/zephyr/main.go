// Command zephyr is the runtime's command-line entry point: it parses
// spec §6.2's flag set, wires the scheduler, event loop and module
// importer together, and runs a source file, an inline -c command, or
// (with neither) a small embedded smoke program that proves the
// scheduler/fiber/interpreter path runs end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zephyr-lang/zephyr/internal/bytecode"
	"github.com/zephyr-lang/zephyr/internal/cli"
	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/evloop"
	"github.com/zephyr-lang/zephyr/internal/fiber"
	"github.com/zephyr-lang/zephyr/internal/importer"
	"github.com/zephyr-lang/zephyr/internal/interp"
	"github.com/zephyr-lang/zephyr/internal/logx"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/value"
)

// compileSource is the scanner/parser/compiler front end's hook: out of
// scope here (spec.md's own Non-goals exclude it), so by default it
// reports that plainly rather than faking a parse. An embedding build
// that does carry a front end replaces this var before main runs.
var compileSource importer.Compile = func(path string, src []byte) (*bytecode.Code, error) {
	return nil, fmt.Errorf("%s: no source front end is built into this binary (scanner/parser are out of scope)", path)
}

func main() {
	cfg, err := cli.ParseArgs(os.Args[1:])
	if err == flag.ErrHelp {
		printHelp()
		os.Exit(0)
	}
	if err != nil {
		cli.ExitWithError("%v", err)
	}

	level := logx.Info
	if cfg.Quiet {
		level = logx.Warn
	}
	if cfg.PrintStack {
		level = logx.Debug
	}
	log := logx.New(os.Stderr, level)

	im := buildImporter(cfg)
	interp.ImportModule = func(name string) (object.Object, error) {
		m, err := im.Import(name)
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	sched := fiber.NewScheduler(cfg.MaxVCores, interp.Run, log)
	loop := evloop.New(sched)

	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan struct{})
	if err := sched.Start(ctx); err != nil {
		cli.ExitWithError("starting scheduler: %v", err)
	}
	go loop.Run(stop)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(stop)
		cancel()
	}()

	if !cfg.Quiet {
		printBanner()
	}

	exitCode := run(cfg)

	cancel()
	close(stop)
	_ = sched.Stop()
	os.Exit(exitCode)
}

// buildImporter wires the built-in, filesystem/source, and native
// loader chains together (spec §4.13): built-ins resolve first, then
// the ZEPHYRPATH search path, matching BuiltinLocator/FilesystemLocator
// registration order in every other caller of this package.
func buildImporter(cfg *cli.RuntimeConfig) *importer.Importer {
	im := importer.New()
	im.AddLocator(importer.BuiltinLocator)
	if len(cfg.ModulePath) > 0 {
		im.AddLocator(importer.FilesystemLocator(cfg.ModulePath))
	}
	im.SetLoader(importer.Builtin, importer.BuiltinLoader)
	im.SetLoader(importer.Source, importer.SourceLoader(compileSource))
	im.SetLoader(importer.Native, importer.NativeLoader)
	return im
}

// run executes the configured program (a file, an inline command, or
// the embedded smoke program) to completion and returns the process
// exit code.
func run(cfg *cli.RuntimeConfig) int {
	var (
		code        *bytecode.Code
		err         error
		printResult bool
	)

	switch {
	case cfg.CommandStr != "":
		code, err = compileSource("<command>", []byte(cfg.CommandStr))
		printResult = true
	case cfg.SourcePath != "":
		var src []byte
		src, err = os.ReadFile(cfg.SourcePath)
		if err == nil {
			code, err = compileSource(cfg.SourcePath, src)
		}
	default:
		code = smokeProgram()
		printResult = true
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "zephyr: %v\n", err)
		return 1
	}

	f := fiber.NewFiber(code.StackSize)
	fr := fiber.NewFrame(f, code, value.NewNamespace(), false)
	f.Current = fr

	if rtErr := interp.RunFrame(f, fr); rtErr != nil {
		return reportError(rtErr, cfg.PrintStack)
	}

	if fr.ReturnValue != nil && printResult {
		fmt.Println(object.Str(fr.ReturnValue))
	}
	return 0
}

// reportError prints rtErr and derives the process exit code: a
// RuntimeExit carries its own code in Context["code"] (spec §7 "the
// RuntimeExit kind terminates the hosting process"), everything else
// exits 1. --pst prints the full Caller/Cause chain rather than just
// the top-level message.
func reportError(rtErr *zerrors.RuntimeError, printStack bool) int {
	if rtErr.Kind == zerrors.KindExit {
		code, _ := rtErr.Context["code"].(int)
		return code
	}
	if printStack {
		fmt.Fprintln(os.Stderr, rtErr.Error())
	} else {
		fmt.Fprintf(os.Stderr, "%s: %s\n", rtErr.Kind, rtErr.Message)
	}
	return 1
}

// smokeProgram hand-assembles "push a banner string, return it" — two
// instructions, no front end required — so the scheduler/fiber/
// interpreter path has something real to execute when run with neither
// a file nor -c CMD.
func smokeProgram() *bytecode.Code {
	banner := value.NewString(fmt.Sprintf("Zephyr %s runtime ready", cli.Version))
	var instr []byte
	instr = bytecode.EncodeInstr(instr, bytecode.OpLSTATIC, 0)
	instr = bytecode.EncodeInstr(instr, bytecode.OpRET, 0)
	return bytecode.NewCode("<smoke>", instr, []object.Object{banner}, nil, nil, nil, 1, 0, nil)
}

func printBanner() {
	fmt.Printf("Zephyr %s\n", cli.Version)
}

func printHelp() {
	cli.PrintUsage("zephyr", []cli.CommandInfo{
		{Name: "<file>", Description: "run a source file"},
		{Name: "-c CMD", Description: "run CMD as the program source"},
	})
}
