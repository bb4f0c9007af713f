package main

import (
	"testing"

	"github.com/zephyr-lang/zephyr/internal/cli"
	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/fiber"
	"github.com/zephyr-lang/zephyr/internal/interp"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/value"
)

func TestSmokeProgramReturnsBanner(t *testing.T) {
	code := smokeProgram()

	f := fiber.NewFiber(code.StackSize)
	fr := fiber.NewFrame(f, code, value.NewNamespace(), false)
	f.Current = fr

	if err := interp.RunFrame(f, fr); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
	if fr.ReturnValue == nil {
		t.Fatal("expected the smoke program to return a value")
	}
	if got := object.Str(fr.ReturnValue); got == "" {
		t.Fatal("expected a non-empty banner string")
	}
}

func TestReportErrorDerivesExitCodeFromExit(t *testing.T) {
	err := zerrors.Exit(7)
	if code := reportError(err, false); code != 7 {
		t.Fatalf("reportError(Exit(7)) = %d, want 7", code)
	}
}

func TestReportErrorDefaultsToOneForOtherKinds(t *testing.T) {
	err := zerrors.ModuleImport("nope", "not found")
	if code := reportError(err, false); code != 1 {
		t.Fatalf("reportError(ModuleImport) = %d, want 1", code)
	}
}

func TestBuildImporterWiresBuiltinLocator(t *testing.T) {
	im := buildImporter(&cli.RuntimeConfig{})
	if im == nil {
		t.Fatal("expected a non-nil importer")
	}
	if _, err := im.Import("does/not/exist"); err == nil {
		t.Fatal("expected an unresolvable module to fail even with no module path configured")
	}
}
