//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

// Package main is the entry point for the ted editor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/ted/internal/app"
	"github.com/dshills/ted/internal/lifecycle"
	"github.com/dshills/ted/internal/term"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) (code int) {
	opts, code, done := parseFlags(args, stdout, stderr)
	if done {
		return code
	}

	if !term.IsTerminal(os.Stdin.Fd()) || !term.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(stderr, "ted: not a tty")
		return 1
	}

	// Cleanup runs on every exit path; diagnostics print after the
	// terminal is restored.
	registry := lifecycle.NewRegistry()
	registry.SetDebug(opts.Debug)
	registry.SetOutput(stderr)
	opts.Registry = registry
	defer func() {
		if err := registry.Run(); err != nil && code == 0 {
			code = 1
		}
	}()

	// Raw mode disables keyboard signals; these come from outside.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-signals
		registry.Fail(fmt.Errorf("ted: %v", sig))
		registry.Exit(1)
	}()

	application, err := app.New(opts)
	if err != nil {
		registry.Fail(err)
		return 1
	}

	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		registry.Fail(err)
		return 1
	}
	return 0
}

// parseFlags parses args into application options. done is true when the
// process should exit with code without starting the editor.
func parseFlags(args []string, stdout, stderr io.Writer) (opts app.Options, code int, done bool) {
	var showVersion bool
	var showHelp bool

	fs := flag.NewFlagSet("ted", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.BoolVar(&opts.Debug, "debug", false, "Enable debug mode")
	fs.BoolVar(&opts.Debug, "d", false, "Enable debug mode (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file")
	fs.BoolVar(&opts.NoScript, "no-script", false, "Do not run the init.lua script")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	printUsage := func(w io.Writer) {
		fmt.Fprintf(w, "ted - a small terminal text editor\n\n")
		fmt.Fprintf(w, "Usage: ted [options] [--] [files...]\n\n")
		fmt.Fprintf(w, "Options:\n")
		fs.SetOutput(w)
		fs.PrintDefaults()
		fs.SetOutput(stderr)
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  ted                    Open with empty buffer\n")
		fmt.Fprintf(w, "  ted a.txt b.txt        Open files, b.txt active\n")
		fmt.Fprintf(w, "  ted -- -notes.txt      Open a file whose name starts with a dash\n")
	}
	fs.Usage = func() { printUsage(stderr) }

	// flag stops at the first file name; keep parsing after each one so
	// options may follow files. Only "--" ends option parsing.
	var files []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			// The flag set has already printed the error and usage.
			return opts, 1, true
		}
		remaining := fs.Args()
		if endOfOptions(fs, rest[:len(rest)-len(remaining)]) {
			files = append(files, remaining...)
			break
		}
		if len(remaining) == 0 {
			break
		}
		if strings.HasPrefix(remaining[0], "-") {
			fmt.Fprintf(stderr, "invalid option: %s\n", remaining[0])
			fs.Usage()
			return opts, 1, true
		}
		files = append(files, remaining[0])
		rest = remaining[1:]
	}

	if showHelp {
		printUsage(stdout)
		return opts, 0, true
	}

	if showVersion {
		fmt.Fprintf(stdout, "ted %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, 0, true
	}

	// Validate log level
	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(stderr, "ted: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		return opts, 1, true
	}

	opts.Files = files
	opts.Version = version
	opts.WatchConfig = true
	return opts, 0, false
}

// endOfOptions reports whether the arguments flag consumed end with a "--"
// terminator rather than "--" given as a flag's value.
func endOfOptions(fs *flag.FlagSet, consumed []string) bool {
	n := len(consumed)
	if n == 0 || consumed[n-1] != "--" {
		return false
	}
	if n == 1 {
		return true
	}

	prev := consumed[n-2]
	name := strings.TrimLeft(prev, "-")
	if !strings.HasPrefix(prev, "-") || name == "" || strings.Contains(name, "=") {
		return true
	}
	f := fs.Lookup(name)
	if f == nil {
		return true
	}
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
