package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rectcircle/doorparty/internal/endpoint"
	"github.com/rectcircle/doorparty/internal/logs"
	"github.com/rectcircle/doorparty/internal/rlogin"
	"github.com/rectcircle/doorparty/internal/session"
	"github.com/rectcircle/doorparty/internal/tunnel"
	"github.com/rectcircle/doorparty/internal/variable"
	"github.com/rectcircle/doorparty/tools"
	"github.com/tebeka/atexit"
)

const version = "0.0.1"

func parseArgs(args []string, output io.Writer) (opts session.Options, exit bool, err error) {
	var showVersion bool
	flagset := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flagset.SetOutput(output)
	flagset.StringVar(&opts.Dropfile, "d", "", "path to door32.sys")
	flagset.StringVar(&opts.Dropfile, "dropfile", "", "path to door32.sys")
	flagset.StringVar(&opts.Game, "g", "", "optional code of game to launch")
	flagset.StringVar(&opts.Game, "game", "", "optional code of game to launch")
	flagset.StringVar(&opts.Settings, "s", "", "optional path to "+variable.SettingsFileName)
	flagset.StringVar(&opts.Settings, "settings", "", "optional path to "+variable.SettingsFileName)
	flagset.StringVar(&opts.Password, "p", "", "optional per-user rlogin password")
	flagset.StringVar(&opts.Password, "password", "", "optional per-user rlogin password")
	flagset.BoolVar(&opts.Debug, "debug", false, "debug logging, outputs to "+variable.LogFileName)
	flagset.BoolVar(&showVersion, "version", false, "output the version number")
	flagset.Usage = func() {
		fmt.Fprintf(flagset.Output(), "Connect a BBS caller to a door party game server over rlogin\nUsage of `%s`:\n", args[0])
		flagset.PrintDefaults()
	}
	if err = flagset.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return opts, true, nil
		}
		return opts, false, err
	}
	if showVersion {
		fmt.Fprintln(output, version)
		return opts, true, nil
	}
	return opts, false, nil
}

func run(ctx context.Context, opts session.Options, programDir string, logger *slog.Logger) error {
	logger.Debug("Program", "data", opts)
	descriptor, err := session.Load(opts, programDir, logger)
	if err != nil {
		return err
	}
	local, err := endpoint.Open(descriptor.Origin)
	if err != nil {
		return err
	}
	defer local.Close()
	engine := &tunnel.Engine{
		Descriptor: descriptor,
		Local:      local,
		Dialer:     tunnel.SSHDialer{},
		Handoff:    rlogin.NewHandoff(logger),
		Logger:     logger,
	}
	// the outcome is already logged, a closed tunnel always ends the door normally
	engine.Run(ctx)
	return nil
}

func main() {
	opts, exit, err := parseArgs(os.Args, os.Stderr)
	if exit {
		atexit.Exit(0)
	}
	if err != nil {
		atexit.Exit(2)
	}
	programDir := tools.ProgramDir()
	logger := logs.New(filepath.Join(programDir, variable.LogFileName), opts.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, opts, programDir, logger); err != nil {
		logger.Error("Exception", "err", err)
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
