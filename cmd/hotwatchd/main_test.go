package main

import (
	"testing"
	"time"

	"github.com/spf13/pflag"

	"hotwatch/internal/config"
	"hotwatch/internal/logging"
)

func parseFlags(t *testing.T, args ...string) (*pflag.FlagSet, string, string, time.Duration) {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	listen := flags.String("listen", "", "")
	logLevel := flags.String("log-level", "", "")
	waitTimeout := flags.Duration("wait-timeout", 0, "")
	if err := flags.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return flags, *listen, *logLevel, *waitTimeout
}

func TestApplyOverridesLeavesSettingsWhenUnset(t *testing.T) {
	settings := config.Defaults()
	flags, listen, level, timeout := parseFlags(t)

	if err := applyOverrides(&settings, flags, listen, level, timeout); err != nil {
		t.Fatalf("apply overrides: %v", err)
	}
	if settings.Listen != config.Defaults().Listen {
		t.Fatalf("listen changed unexpectedly: %q", settings.Listen)
	}
	if settings.WaitTimeout != config.Defaults().WaitTimeout {
		t.Fatalf("wait timeout changed unexpectedly: %v", settings.WaitTimeout)
	}
}

func TestApplyOverridesWinsOverFile(t *testing.T) {
	settings := config.Defaults()
	flags, listen, level, timeout := parseFlags(t,
		"--listen", "127.0.0.1:7000",
		"--log-level", "debug",
		"--wait-timeout", "300ms",
	)

	if err := applyOverrides(&settings, flags, listen, level, timeout); err != nil {
		t.Fatalf("apply overrides: %v", err)
	}
	if settings.Listen != "127.0.0.1:7000" {
		t.Fatalf("unexpected listen %q", settings.Listen)
	}
	if settings.LogLevel != logging.LevelDebug {
		t.Fatalf("unexpected level %q", settings.LogLevel)
	}
	if settings.WaitTimeout != 300*time.Millisecond {
		t.Fatalf("unexpected timeout %v", settings.WaitTimeout)
	}
}

func TestApplyOverridesRejectsBadValues(t *testing.T) {
	settings := config.Defaults()
	flags, listen, level, timeout := parseFlags(t, "--log-level", "loud")
	if err := applyOverrides(&settings, flags, listen, level, timeout); err == nil {
		t.Fatal("expected error for unknown level")
	}

	settings = config.Defaults()
	flags, listen, level, timeout = parseFlags(t, "--wait-timeout", "-1s")
	if err := applyOverrides(&settings, flags, listen, level, timeout); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}
