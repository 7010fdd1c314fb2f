// Package cmd implements the CLI command using Cobra.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/AeryAnubhav/curl/internal/config"
	"github.com/AeryAnubhav/curl/internal/httputil"
	"github.com/AeryAnubhav/curl/internal/intent"
	"github.com/AeryAnubhav/curl/internal/render"
	"github.com/AeryAnubhav/curl/internal/urlcheck"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagDebug  bool
	flagConfig string
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// app carries the per-invocation state of one command run.
type app struct {
	args    []string
	stdout  io.Writer
	stderr  io.Writer
	client  httputil.Doer
	builder *intent.Builder
	printer *render.Printer
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curl <URL> [-d <data>] [--json <data>] [-X <METHOD>]",
		Short: "Send a single HTTP request and print the response",
		Long: `curl sends one GET or POST request to an http or https URL and prints the
response. JSON responses are printed with object keys sorted at every level.`,
		Version:           Version,
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.loadConfig,
		RunE:              a.run,
	}

	flags := cmd.Flags()
	a.builder = intent.RegisterFlags(flags)
	flags.BoolVar(&flagDebug, "debug", false, "Debug logging to stderr")
	flags.StringVar(&flagConfig, "config", "", "Path to a TOML config file")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return intent.FlagError(a.args, err)
	})
	cmd.SetArgs(a.args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	return cmd
}

// Run executes the command with args (excluding the program name) and
// returns the process exit code. A nil client means a new hardened client.
func Run(args []string, stdout, stderr io.Writer, client httputil.Doer) int {
	flagDebug, flagConfig, cfg = false, "", nil
	if args == nil {
		// cobra falls back to os.Args when given nil
		args = []string{}
	}

	a := &app{args: args, stdout: stdout, stderr: stderr, client: client}
	if err := a.command().Execute(); err != nil {
		a.report(err)
		return exitCode(err)
	}
	return exitOK
}

// Execute runs the root command against os.Args and exits.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr, nil))
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(flagConfig, Version)
	if err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}

	if flagDebug {
		cfg.Debug = true
	}

	log.SetOutput(a.stderr)
	if cfg.Debug {
		log.SetPrefix("[curl] ")
		log.SetFlags(log.LstdFlags)
	} else {
		log.SetPrefix("")
		log.SetFlags(0)
	}

	a.printer = render.New(a.stdout, a.stderr, cfg.Color)
	if cfg.Debug {
		a.printer.Debugf = debugf
	}
	if a.client == nil {
		a.client = httputil.NewClient()
	}
	return nil
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	ri, err := a.builder.Build(args)
	if err != nil {
		return err
	}
	if a.builder.Dropped {
		debugf("ignoring request body: %s requests carry none", ri.Method)
	}

	a.printer.Request(ri)

	u, err := urlcheck.Validate(ri.URL)
	if err != nil {
		var urlErr *urlcheck.Error
		if errors.As(err, &urlErr) {
			debugf("URL rejected (%s): %q", urlErr.Kind, ri.URL)
		}
		return err
	}
	debugf("validated URL: %s", u)

	resp, err := httputil.Dispatch(a.client, ri, u, httputil.Options{
		UserAgent:    cfg.UserAgent,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	if err != nil {
		var terr *httputil.TransportError
		if errors.As(err, &terr) {
			debugf("transport error: %v", terr.Err)
		}
		return err
	}
	debugf("status: %d", resp.StatusCode)

	return a.printer.Response(resp)
}

// report prints exactly one diagnostic line for err.
func (a *app) report(err error) {
	if a.printer == nil {
		a.printer = render.New(a.stdout, a.stderr, config.ColorAuto)
	}

	var usage *intent.UsageError
	if errors.As(err, &usage) && usage.Msg == intent.Usage {
		a.printer.Plain(usage.Msg)
		return
	}
	a.printer.Error(err)
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		log.Printf(format, args...)
	}
}
