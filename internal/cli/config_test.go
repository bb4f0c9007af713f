package cli

import (
	"os"
	"testing"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := ParseArgs([]string{"script.zy", "arg1", "arg2"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.SourcePath != "script.zy" {
		t.Fatalf("SourcePath = %q, want script.zy", cfg.SourcePath)
	}
	if len(cfg.Args) != 2 || cfg.Args[0] != "arg1" || cfg.Args[1] != "arg2" {
		t.Fatalf("Args = %v, want [arg1 arg2]", cfg.Args)
	}
	if cfg.OptLevel != 1 {
		t.Fatalf("OptLevel = %d, want default of 1", cfg.OptLevel)
	}
}

func TestParseArgsCommandString(t *testing.T) {
	cfg, err := ParseArgs([]string{"-c", "print(1)", "-q", "-u", "--nogc"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.CommandStr != "print(1)" {
		t.Fatalf("CommandStr = %q, want print(1)", cfg.CommandStr)
	}
	if cfg.SourcePath != "" {
		t.Fatalf("SourcePath = %q, want empty when -c is used", cfg.SourcePath)
	}
	if !cfg.Quiet || !cfg.Unbuffered || !cfg.NoGC {
		t.Fatalf("expected -q/-u/--nogc all set, got %+v", cfg)
	}
}

func TestParseArgsRejectsOutOfRangeOptLevel(t *testing.T) {
	if _, err := ParseArgs([]string{"-O", "7", "script.zy"}); err == nil {
		t.Fatal("expected an error for -O outside 0-3")
	}
}

func TestParseArgsAppliesModulePathFromEnvironment(t *testing.T) {
	sep := string(os.PathListSeparator)
	t.Setenv("ZEPHYRPATH", "/a/modules"+sep+"/b/modules")
	t.Setenv("ZEPHYRSTARTUP", "")
	t.Setenv("ZEPHYRMAXVC", "")
	t.Setenv("ZEPHYRUNBUFFERED", "")

	cfg, err := ParseArgs([]string{"script.zy"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if len(cfg.ModulePath) != 2 || cfg.ModulePath[0] != "/a/modules" || cfg.ModulePath[1] != "/b/modules" {
		t.Fatalf("ModulePath = %v, want [/a/modules /b/modules]", cfg.ModulePath)
	}
}

func TestParseArgsUnbufferedFromEnvironment(t *testing.T) {
	t.Setenv("ZEPHYRUNBUFFERED", "1")
	cfg, err := ParseArgs([]string{"script.zy"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if !cfg.Unbuffered {
		t.Fatal("expected ZEPHYRUNBUFFERED=1 to force Unbuffered on")
	}
}
